package postgres

import (
	"context"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/database"
	"github.com/adeco-retail/vtexwatch/pkg/errors"
)

// AvailabilityRepository is append-only; only the Availability Orchestrator's
// committer writes to it, one transaction per flushed batch.
type AvailabilityRepository struct {
	db *database.DB
}

func NewAvailabilityRepository(db *database.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) AppendBatch(ctx context.Context, rows []domain.AvailabilityResult) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return errors.InternalWrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO availability_results (
			retailer_host, store_id, ean, sku_item_id, seller_id, sales_channel,
			is_available, price, list_price, available_quantity, currency,
			error_message, raw_response, checked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	for _, row := range rows {
		if _, err := tx.Exec(ctx, query,
			row.RetailerHost, row.StoreID, row.EAN, row.SkuItemID, row.SellerID, row.SalesChannel,
			row.IsAvailable, row.Price, row.ListPrice, row.AvailableQuantity, row.Currency,
			row.ErrorMessage, row.RawResponse, row.CheckedAt,
		); err != nil {
			return errors.InternalWrap(err, "failed to append availability result")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.InternalWrap(err, "failed to commit transaction")
	}
	return nil
}
