package platform_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adeco-retail/vtexwatch/internal/platform"
)

func TestError_StatusBodyMessage(t *testing.T) {
	err := &platform.Error{Status: 500, RawBody: "internal error"}
	assert.Equal(t, "500:internal error", err.StatusBodyMessage())
}

func TestError_StatusBodyMessage_Truncates(t *testing.T) {
	err := &platform.Error{Status: 500, RawBody: strings.Repeat("x", 600)}
	msg := err.StatusBodyMessage()
	assert.Len(t, msg, len("500:")+500)
}

func TestError_IsOperationNotAuthorized(t *testing.T) {
	err := &platform.Error{Status: 400, RawBody: `{"error":"operationNotAuthorized"}`}
	assert.True(t, err.IsOperationNotAuthorized())
}

func TestError_IsOperationNotAuthorized_WrongStatus(t *testing.T) {
	err := &platform.Error{Status: 403, RawBody: `{"error":"operationNotAuthorized"}`}
	assert.False(t, err.IsOperationNotAuthorized())
}

func TestError_IsEmptyItemsSimulation_True(t *testing.T) {
	err := &platform.Error{Status: 400, RawBody: `{"items":[]}`}
	assert.True(t, err.IsEmptyItemsSimulation())
}

func TestError_IsEmptyItemsSimulation_NonEmpty(t *testing.T) {
	err := &platform.Error{Status: 400, RawBody: `{"items":[{"id":"1"}]}`}
	assert.False(t, err.IsEmptyItemsSimulation())
}

func TestError_IsEmptyItemsSimulation_MalformedBody(t *testing.T) {
	err := &platform.Error{Status: 400, RawBody: "not json"}
	assert.False(t, err.IsEmptyItemsSimulation())
}

func TestError_Error(t *testing.T) {
	err := &platform.Error{Status: 404, RawBody: "not found"}
	assert.Contains(t, err.Error(), "status=404")
	assert.Contains(t, err.Error(), "not found")
}
