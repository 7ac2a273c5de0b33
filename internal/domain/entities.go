// Package domain holds the observatory's entities and repository ports.
// There is a single aggregate cluster (§9 design note), so unlike the
// teacher's per-bounded-context domain/application/infrastructure split,
// entities and ports live together here and get one implementation package,
// internal/postgres.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Retailer is a storefront on the platform, identified by its canonical host.
type Retailer struct {
	ID            int64
	Name          string
	Host          string
	SalesChannels []int
	Enabled       bool
}

// Store is an operator-owned physical location.
type Store struct {
	ID                int64
	RetailerHost      string
	Address           string
	City              string
	Province          string
	PostalCode        string
	Lat               float64
	Lon               float64
	Bandera           string
	Comercio          string
	Sucursal          string
	VtexPickupPointID string
	LastVtexSync      *time.Time
	Active            bool
}

// PickupPoint is the platform's identifier for a physical fulfillment point,
// identified by (retailer host, pickup-point-id).
type PickupPoint struct {
	Host     string
	ID       string
	Name     string
	Lon      float64
	Lat      float64
	Bandera  string
	Comercio string
	Sucursal string
}

// Category is one node of a retailer's category tree, identified by
// (retailer host, external category id).
type Category struct {
	DbID             int64
	Host             string
	ExternalID       int64
	Name             string
	ParentExternalID int64 // 0 means root
	ParentDbID       int64 // resolved in the second pass of SyncCategories
}

// Product is identified by (retailer host, external product id).
type Product struct {
	DbID        int64
	Host        string
	ExternalID  int64
	Name        string
	Brand       string
	BrandID     int64
	LinkText    string
	Link        string
	CacheID     string
	ReleaseDate time.Time
	RawJSON     string
}

// Sku belongs to a Product and is identified by (retailer host, item id).
type Sku struct {
	DbID            int64
	Host            string
	ItemID          string
	ProductDbID     int64
	EAN             string
	DisplayName     string
	MeasurementUnit string
	UnitMultiplier  decimal.Decimal
}

// Seller is identified by (sku, seller id).
type Seller struct {
	SkuDbID       int64
	SellerID      string
	DisplayName   string
	SellerDefault bool
}

// CommercialOffer is an append-only price snapshot for one (sku, seller) pair.
type CommercialOffer struct {
	SkuDbID              int64
	SellerID             string
	Price                decimal.Decimal
	ListPrice            decimal.Decimal
	SpotPrice            decimal.Decimal
	PriceWithoutDiscount decimal.Decimal
	ValidUntil           *time.Time
	AvailableQuantity    int
	CapturedAt           time.Time
}

// TrackedProduct is an EAN the operator wants monitored across retailers.
type TrackedProduct struct {
	EAN         string
	OwnerLabel  string
	ProductName string
	Track       bool
}

// AvailabilityResult is an append-only probe row.
type AvailabilityResult struct {
	ID                int64
	RetailerHost      string
	StoreID           int64
	EAN               string
	SkuItemID         string
	SellerID          string
	SalesChannel      int
	IsAvailable       bool
	Price             *decimal.Decimal
	ListPrice         *decimal.Decimal
	AvailableQuantity int
	Currency          string
	ErrorMessage      string
	RawResponse       *string
	CheckedAt         time.Time
}

// SweepType enumerates the phases the Master Orchestrator tracks
// independently per retailer (§4.8).
type SweepType string

const (
	SweepTypeDiscovery SweepType = "discovery"
	SweepTypeStoreMap  SweepType = "store_map"
	SweepTypeProbe      SweepType = "probe"
	SweepTypeCatalog    SweepType = "catalog"
)

// SweepStatus is the lifecycle state of a SweepLog row.
type SweepStatus string

const (
	SweepStatusRunning SweepStatus = "running"
	SweepStatusSuccess SweepStatus = "success"
	SweepStatusFailed  SweepStatus = "failed"
)

// SweepLog records one run of one phase for one retailer.
type SweepLog struct {
	ID           string // google/uuid, not a business identity key
	RetailerHost string
	SweepType    SweepType
	StartedAt    time.Time
	CompletedAt  *time.Time
	Status       SweepStatus
	Notes        string
}

// WorkItem is one row of the join the Availability Orchestrator expands
// into probe calls (spec.md §4.7 step 1).
type WorkItem struct {
	EAN           string
	SkuItemID     string
	SellerID      string
	StoreID       int64
	PickupPointID string
	PostalCode    string
	RetailerHost  string
	SalesChannel  int
}
