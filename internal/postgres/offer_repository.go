package postgres

import (
	"context"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/database"
	"github.com/adeco-retail/vtexwatch/pkg/errors"
)

// OfferRepository is append-only: commercial offers are price snapshots,
// never mutated once captured.
type OfferRepository struct {
	db *database.DB
}

func NewOfferRepository(db *database.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) Append(ctx context.Context, o domain.CommercialOffer) error {
	query := `
		INSERT INTO commercial_offers (
			sku_db_id, seller_id, price, list_price, spot_price,
			price_without_discount, valid_until, available_quantity, captured_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if err := r.db.Exec(ctx, query, o.SkuDbID, o.SellerID, o.Price, o.ListPrice, o.SpotPrice,
		o.PriceWithoutDiscount, o.ValidUntil, o.AvailableQuantity, o.CapturedAt); err != nil {
		return errors.InternalWrap(err, "failed to append commercial offer")
	}
	return nil
}
