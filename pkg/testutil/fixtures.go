package testutil

import (
	"time"

	"github.com/adeco-retail/vtexwatch/internal/domain"
)

// Common test fixtures and factory functions, returning this module's own
// domain types rather than generic maps.

// FixtureStore returns a sample active store for testing.
func FixtureStore(host string, id int64) domain.Store {
	return domain.Store{
		ID:           id,
		RetailerHost: host,
		Address:      "Av. Test 1234",
		City:         "Buenos Aires",
		Province:     "CABA",
		PostalCode:   "1425",
		Lat:          -34.6037,
		Lon:          -58.3816,
		Bandera:      "test-bandera",
		Comercio:     "test-comercio",
		Sucursal:     "0001",
		Active:       true,
	}
}

// FixtureWorkItem returns a sample probe work item for testing.
func FixtureWorkItem(host string, storeID int64) domain.WorkItem {
	return domain.WorkItem{
		EAN:           "7790001234567",
		SkuItemID:     "sku-1",
		SellerID:      "1",
		StoreID:       storeID,
		PickupPointID: "pp-1",
		RetailerHost:  host,
		SalesChannel:  1,
	}
}

// FixtureAvailabilityResult returns a sample persisted availability row.
func FixtureAvailabilityResult(host string, storeID int64) domain.AvailabilityResult {
	return domain.AvailabilityResult{
		RetailerHost: host,
		StoreID:      storeID,
		EAN:          "7790001234567",
		SkuItemID:    "sku-1",
		SellerID:     "1",
		SalesChannel: 1,
		IsAvailable:  true,
		Currency:     "ARS",
		CheckedAt:    time.Now().UTC(),
	}
}

// FixtureSweepLog returns a sample open sweep log row.
func FixtureSweepLog(host string, kind domain.SweepType) domain.SweepLog {
	return domain.SweepLog{
		ID:           "sweep-1",
		RetailerHost: host,
		SweepType:    kind,
		StartedAt:    time.Now().UTC(),
		Status:       domain.SweepStatusRunning,
	}
}
