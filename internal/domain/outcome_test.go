package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adeco-retail/vtexwatch/internal/domain"
)

func TestProbeOutcome_Ok(t *testing.T) {
	price := 199.90
	listPrice := 249.90
	outcome := domain.Ok(true, &price, &listPrice, 5, "ARS")

	assert.True(t, outcome.IsOk())
	assert.False(t, outcome.IsUnavailable())
	assert.False(t, outcome.IsError())
	assert.True(t, outcome.Available)
	assert.Equal(t, &price, outcome.Price)
	assert.Equal(t, 5, outcome.Quantity)
	assert.Equal(t, "ARS", outcome.Currency)
}

func TestProbeOutcome_Unavailable(t *testing.T) {
	outcome := domain.Unavailable()

	assert.False(t, outcome.IsOk())
	assert.True(t, outcome.IsUnavailable())
	assert.False(t, outcome.IsError())
	assert.False(t, outcome.Available)
}

func TestProbeOutcome_Err(t *testing.T) {
	outcome := domain.Err(domain.KindRateLimit, "too many requests")

	assert.False(t, outcome.IsOk())
	assert.False(t, outcome.IsUnavailable())
	assert.True(t, outcome.IsError())
	assert.Equal(t, domain.KindRateLimit, outcome.Kind())
	assert.Equal(t, "too many requests", outcome.Message())
}

func TestProbeOutcome_String(t *testing.T) {
	price := 10.0
	assert.Contains(t, domain.Ok(true, &price, nil, 1, "ARS").String(), "Ok(")
	assert.Equal(t, "Unavailable", domain.Unavailable().String())
	assert.Contains(t, domain.Err(domain.KindPersistence, "boom").String(), "Error(")
}
