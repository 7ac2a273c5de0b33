package postgres

import (
	"context"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/database"
	"github.com/adeco-retail/vtexwatch/pkg/errors"
)

// TrackedProductRepository is operator-curated; the pipeline only reads it.
type TrackedProductRepository struct {
	db *database.DB
}

func NewTrackedProductRepository(db *database.DB) *TrackedProductRepository {
	return &TrackedProductRepository{db: db}
}

func (r *TrackedProductRepository) ListTracked(ctx context.Context) ([]domain.TrackedProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ean, owner_label, product_name, track
		FROM tracked_products WHERE track = true`)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to list tracked products")
	}
	defer rows.Close()

	var out []domain.TrackedProduct
	for rows.Next() {
		var t domain.TrackedProduct
		if err := rows.Scan(&t.EAN, &t.OwnerLabel, &t.ProductName, &t.Track); err != nil {
			return nil, errors.InternalWrap(err, "failed to scan tracked product")
		}
		out = append(out, t)
	}
	return out, nil
}
