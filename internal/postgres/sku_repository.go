package postgres

import (
	"context"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/database"
	"github.com/adeco-retail/vtexwatch/pkg/errors"
)

// SkuRepository is written by Catalog Sync and Targeted Discovery, keyed by
// (host, item_id), and read by the Availability Orchestrator to resolve EANs.
type SkuRepository struct {
	db *database.DB
}

func NewSkuRepository(db *database.DB) *SkuRepository {
	return &SkuRepository{db: db}
}

func (r *SkuRepository) Upsert(ctx context.Context, s domain.Sku) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, errors.InternalWrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var dbID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO skus (host, item_id, product_db_id, ean, display_name, measurement_unit, unit_multiplier)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (host, item_id) DO UPDATE SET
			product_db_id = EXCLUDED.product_db_id,
			ean = EXCLUDED.ean,
			display_name = EXCLUDED.display_name,
			measurement_unit = EXCLUDED.measurement_unit,
			unit_multiplier = EXCLUDED.unit_multiplier
		RETURNING id`,
		s.Host, s.ItemID, s.ProductDbID, s.EAN, s.DisplayName, s.MeasurementUnit, s.UnitMultiplier,
	).Scan(&dbID)
	if err != nil {
		return 0, errors.InternalWrap(err, "failed to upsert sku")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errors.InternalWrap(err, "failed to commit transaction")
	}
	return dbID, nil
}

func (r *SkuRepository) FindByEAN(ctx context.Context, host, ean string) ([]domain.Sku, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, host, item_id, product_db_id, ean, display_name, measurement_unit, unit_multiplier
		FROM skus WHERE host = $1 AND ean = $2`, host, ean)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to find skus by ean")
	}
	defer rows.Close()

	var out []domain.Sku
	for rows.Next() {
		var s domain.Sku
		if err := rows.Scan(&s.DbID, &s.Host, &s.ItemID, &s.ProductDbID, &s.EAN, &s.DisplayName,
			&s.MeasurementUnit, &s.UnitMultiplier); err != nil {
			return nil, errors.InternalWrap(err, "failed to scan sku")
		}
		out = append(out, s)
	}
	return out, nil
}
