package orchestrator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/adeco-retail/vtexwatch/internal/domain"
)

func TestDecimalPtr_Nil(t *testing.T) {
	assert.Nil(t, decimalPtr(nil))
}

func TestDecimalPtr_ConvertsFloat(t *testing.T) {
	f := 149.99
	d := decimalPtr(&f)

	assert.NotNil(t, d)
	assert.True(t, d.Equal(decimal.NewFromFloat(149.99)))
}

func TestToAvailabilityResult_Ok(t *testing.T) {
	item := domain.WorkItem{
		RetailerHost: "store.example.com", StoreID: 7, EAN: "7790001",
		SkuItemID: "sku-1", SellerID: "1", SalesChannel: 1,
	}
	price, listPrice := 99.9, 129.9
	outcome := domain.Ok(true, &price, &listPrice, 3, "ARS")

	row := toAvailabilityResult(item, outcome)

	assert.Equal(t, item.RetailerHost, row.RetailerHost)
	assert.Equal(t, item.StoreID, row.StoreID)
	assert.True(t, row.IsAvailable)
	assert.Equal(t, 3, row.AvailableQuantity)
	assert.Equal(t, "ARS", row.Currency)
	assert.True(t, row.Price.Equal(decimal.NewFromFloat(99.9)))
	assert.True(t, row.ListPrice.Equal(decimal.NewFromFloat(129.9)))
	assert.Empty(t, row.ErrorMessage)
}

func TestToAvailabilityResult_Unavailable(t *testing.T) {
	item := domain.WorkItem{StoreID: 1}
	row := toAvailabilityResult(item, domain.Unavailable())

	assert.False(t, row.IsAvailable)
	assert.Nil(t, row.Price)
	assert.Empty(t, row.ErrorMessage)
}

func TestToAvailabilityResult_Error(t *testing.T) {
	item := domain.WorkItem{StoreID: 1}
	row := toAvailabilityResult(item, domain.Err(domain.KindRateLimit, "rate limited"))

	assert.False(t, row.IsAvailable)
	assert.Equal(t, "rate limited", row.ErrorMessage)
}
