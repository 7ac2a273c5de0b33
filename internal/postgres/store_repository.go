package postgres

import (
	"context"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/database"
	"github.com/adeco-retail/vtexwatch/pkg/errors"
)

// StoreRepository is operator-curated; only the pickup-mapping columns are
// writable by the pipeline (the Store Mapper).
type StoreRepository struct {
	db *database.DB
}

func NewStoreRepository(db *database.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) ListByRetailer(ctx context.Context, host string) ([]domain.Store, error) {
	query := `
		SELECT id, retailer_host, address, city, province, postal_code, lat, lon,
			bandera, comercio, sucursal, vtex_pickup_point_id, last_vtex_sync, active
		FROM stores
		WHERE retailer_host = $1 AND active = true`

	rows, err := r.db.Query(ctx, query, host)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to list stores")
	}
	defer rows.Close()

	var out []domain.Store
	for rows.Next() {
		var s domain.Store
		if err := rows.Scan(&s.ID, &s.RetailerHost, &s.Address, &s.City, &s.Province, &s.PostalCode,
			&s.Lat, &s.Lon, &s.Bandera, &s.Comercio, &s.Sucursal, &s.VtexPickupPointID,
			&s.LastVtexSync, &s.Active); err != nil {
			return nil, errors.InternalWrap(err, "failed to scan store")
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *StoreRepository) UpdatePickupMapping(ctx context.Context, storeID int64, pickupPointID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return errors.InternalWrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE stores SET vtex_pickup_point_id = $1, last_vtex_sync = now()
		WHERE id = $2`, pickupPointID, storeID)
	if err != nil {
		return errors.InternalWrap(err, "failed to update pickup mapping")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("store")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.InternalWrap(err, "failed to commit transaction")
	}
	return nil
}
