package domain

import "context"

// RetailerRepository is operator-curated (external writes); the pipeline
// only reads it to find which hosts to sweep.
type RetailerRepository interface {
	ListEnabled(ctx context.Context, hostFilter string) ([]Retailer, error)
}

// StoreRepository is operator-curated; the Store Mapper updates the
// pickup-point mapping columns only.
type StoreRepository interface {
	ListByRetailer(ctx context.Context, host string) ([]Store, error)
	UpdatePickupMapping(ctx context.Context, storeID int64, pickupPointID string) error
}

// PickupPointRepository is written only by the Store Mapper.
type PickupPointRepository interface {
	Upsert(ctx context.Context, pp PickupPoint) error
}

// CategoryRepository is written by Catalog Sync (created on first sight,
// updated in place).
type CategoryRepository interface {
	// Upsert returns the row's db id, creating it if (host, externalID) is new.
	Upsert(ctx context.Context, c Category) (int64, error)
	ListByHost(ctx context.Context, host string) ([]Category, error)
	UpdateParentDbID(ctx context.Context, dbID, parentDbID int64) error
}

// ProductRepository is written by Catalog Sync and Targeted Discovery.
type ProductRepository interface {
	Upsert(ctx context.Context, p Product) (int64, error)
	// ReplaceCategoryLinks diffs the product's current category links against
	// categoryExternalIDs and applies only the add/remove delta.
	ReplaceCategoryLinks(ctx context.Context, productDbID int64, categoryExternalIDs []int64) error
}

// SkuRepository is written by Catalog Sync and Targeted Discovery, read by
// the Availability Orchestrator to build its work set.
type SkuRepository interface {
	Upsert(ctx context.Context, s Sku) (int64, error)
	FindByEAN(ctx context.Context, host, ean string) ([]Sku, error)
}

// SellerRepository is written by Catalog Sync and Targeted Discovery.
type SellerRepository interface {
	Upsert(ctx context.Context, s Seller) error
}

// OfferRepository is append-only; offers are never mutated.
type OfferRepository interface {
	Append(ctx context.Context, o CommercialOffer) error
}

// TrackedProductRepository is operator-curated.
type TrackedProductRepository interface {
	ListTracked(ctx context.Context) ([]TrackedProduct, error)
}

// AvailabilityRepository is append-only; only the Prober writes to it, in
// batches via the orchestrator's committer.
type AvailabilityRepository interface {
	AppendBatch(ctx context.Context, rows []AvailabilityResult) error
}

// SweepLogRepository tracks sweep lifecycle (§9 "tracked, not orphaned").
type SweepLogRepository interface {
	Open(ctx context.Context, host string, kind SweepType) (*SweepLog, error)
	Close(ctx context.Context, id string, status SweepStatus, notes string) error
	Recent(ctx context.Context, host string, limit int) ([]SweepLog, error)
}

// WorkRepository loads the join spec.md §4.7 step 1 describes: the
// cross-product of tracked EANs, SKUs, sellers, and mapped stores.
type WorkRepository interface {
	// LoadEanWork restricts the join to TrackedProduct.track = true.
	LoadEanWork(ctx context.Context, host string) ([]WorkItem, error)
	// LoadAllWork drops the EAN filter (ProbeAll): every SKU known for the
	// host with at least one seller, against every mapped store.
	LoadAllWork(ctx context.Context, host string) ([]WorkItem, error)
}
