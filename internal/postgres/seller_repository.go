package postgres

import (
	"context"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/database"
	"github.com/adeco-retail/vtexwatch/pkg/errors"
)

// SellerRepository is written by Catalog Sync and Targeted Discovery, keyed
// by (sku_db_id, seller_id).
type SellerRepository struct {
	db *database.DB
}

func NewSellerRepository(db *database.DB) *SellerRepository {
	return &SellerRepository{db: db}
}

func (r *SellerRepository) Upsert(ctx context.Context, s domain.Seller) error {
	query := `
		INSERT INTO sellers (sku_db_id, seller_id, display_name, seller_default)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sku_db_id, seller_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			seller_default = EXCLUDED.seller_default`

	if err := r.db.Exec(ctx, query, s.SkuDbID, s.SellerID, s.DisplayName, s.SellerDefault); err != nil {
		return errors.InternalWrap(err, "failed to upsert seller")
	}
	return nil
}
