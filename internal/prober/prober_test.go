package prober

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/internal/platform"
)

func TestExtractOutcome_NoItems(t *testing.T) {
	outcome := extractOutcome(&platform.SimulationResponse{})
	assert.True(t, outcome.IsUnavailable())
}

func TestExtractOutcome_ItemNotAvailable(t *testing.T) {
	resp := &platform.SimulationResponse{
		Items: []platform.SimulationResponseItem{{Availability: "cannotBeDelivered"}},
	}
	outcome := extractOutcome(resp)
	assert.True(t, outcome.IsUnavailable())
}

func TestExtractOutcome_AvailableComputesPriceInMajorUnits(t *testing.T) {
	resp := &platform.SimulationResponse{
		Items: []platform.SimulationResponseItem{{Availability: "available", SellingPrice: 9990, ListPrice: 12990}},
		LogisticsInfo: []platform.SimulationResponseSLA{
			{Slas: []platform.SLA{{AvailableDeliveryWindows: []interface{}{1, 2, 3}}}},
		},
		StorePreferencesData: &platform.StorePreferencesData{CurrencyCode: "USD"},
	}

	outcome := extractOutcome(resp)

	assert.True(t, outcome.IsOk())
	assert.True(t, outcome.Available)
	assert.Equal(t, 99.90, *outcome.Price)
	assert.Equal(t, 129.90, *outcome.ListPrice)
	assert.Equal(t, 3, outcome.Quantity)
	assert.Equal(t, "USD", outcome.Currency)
}

func TestExtractOutcome_DefaultsCurrencyToARS(t *testing.T) {
	resp := &platform.SimulationResponse{
		Items: []platform.SimulationResponseItem{{Availability: "available"}},
	}
	outcome := extractOutcome(resp)
	assert.Equal(t, "ARS", outcome.Currency)
}

func TestExtractOutcome_ZeroQuantityWhenNoLogistics(t *testing.T) {
	resp := &platform.SimulationResponse{
		Items: []platform.SimulationResponseItem{{Availability: "available"}},
	}
	outcome := extractOutcome(resp)
	assert.Equal(t, 0, outcome.Quantity)
}

func TestClassifyError_OperationNotAuthorizedIsUnavailable(t *testing.T) {
	p := New(nil, nil)
	err := &platform.Error{Status: 400, RawBody: `{"error":"operationNotAuthorized"}`}
	outcome := p.classifyError(err)
	assert.True(t, outcome.IsUnavailable())
}

func TestClassifyError_EmptyItemsIsUnavailable(t *testing.T) {
	p := New(nil, nil)
	err := &platform.Error{Status: 400, RawBody: `{"items":[]}`}
	outcome := p.classifyError(err)
	assert.True(t, outcome.IsUnavailable())
}

func TestClassifyError_UnknownPlatformErrorIsParseSchemaError(t *testing.T) {
	p := New(nil, nil)
	err := &platform.Error{Status: 500, RawBody: "internal error"}
	outcome := p.classifyError(err)
	assert.True(t, outcome.IsError())
	assert.Equal(t, domain.KindParseSchema, outcome.Kind())
}

func TestClassifyError_NonPlatformErrorIsTransientNetwork(t *testing.T) {
	p := New(nil, nil)
	outcome := p.classifyError(assertGenericErr())
	assert.True(t, outcome.IsError())
	assert.Equal(t, domain.KindTransientNetwork, outcome.Kind())
}

type genericErr struct{}

func (genericErr) Error() string { return "connection reset" }

func assertGenericErr() error { return genericErr{} }
