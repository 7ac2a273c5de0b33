package postgres

import (
	"context"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/database"
	"github.com/adeco-retail/vtexwatch/pkg/errors"
)

// PickupPointRepository is written only by the Store Mapper, keyed by
// (host, id) since platform pickup-point ids are not globally unique.
type PickupPointRepository struct {
	db *database.DB
}

func NewPickupPointRepository(db *database.DB) *PickupPointRepository {
	return &PickupPointRepository{db: db}
}

func (r *PickupPointRepository) Upsert(ctx context.Context, pp domain.PickupPoint) error {
	query := `
		INSERT INTO pickup_points (host, id, name, lon, lat, bandera, comercio, sucursal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (host, id) DO UPDATE SET
			name = EXCLUDED.name,
			lon = EXCLUDED.lon,
			lat = EXCLUDED.lat,
			bandera = EXCLUDED.bandera,
			comercio = EXCLUDED.comercio,
			sucursal = EXCLUDED.sucursal`

	if err := r.db.Exec(ctx, query, pp.Host, pp.ID, pp.Name, pp.Lon, pp.Lat, pp.Bandera, pp.Comercio, pp.Sucursal); err != nil {
		return errors.InternalWrap(err, "failed to upsert pickup point")
	}
	return nil
}
