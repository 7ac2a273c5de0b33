package postgres

import (
	"context"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/database"
	"github.com/adeco-retail/vtexwatch/pkg/errors"
)

// WorkRepository loads the join spec.md §4.7 step 1 describes: the
// cross-product of EANs, SKUs, sellers, sales channels and mapped stores.
type WorkRepository struct {
	db *database.DB
}

func NewWorkRepository(db *database.DB) *WorkRepository {
	return &WorkRepository{db: db}
}

func (r *WorkRepository) LoadEanWork(ctx context.Context, host string) ([]domain.WorkItem, error) {
	query := `
		SELECT tp.ean, sk.item_id, se.seller_id, st.id, st.vtex_pickup_point_id,
			st.postal_code, sk.host, sc.sales_channel
		FROM tracked_products tp
		JOIN skus sk ON sk.ean = tp.ean AND sk.host = $1
		JOIN sellers se ON se.sku_db_id = sk.id
		JOIN stores st ON st.retailer_host = sk.host AND st.active = true AND st.vtex_pickup_point_id != ''
		JOIN retailers r ON r.host = sk.host
		CROSS JOIN LATERAL unnest(r.sales_channels) AS sc(sales_channel)
		WHERE tp.track = true`

	return r.scanWork(ctx, query, host)
}

func (r *WorkRepository) LoadAllWork(ctx context.Context, host string) ([]domain.WorkItem, error) {
	query := `
		SELECT sk.ean, sk.item_id, se.seller_id, st.id, st.vtex_pickup_point_id,
			st.postal_code, sk.host, sc.sales_channel
		FROM skus sk
		JOIN sellers se ON se.sku_db_id = sk.id
		JOIN stores st ON st.retailer_host = sk.host AND st.active = true AND st.vtex_pickup_point_id != ''
		JOIN retailers r ON r.host = sk.host
		CROSS JOIN LATERAL unnest(r.sales_channels) AS sc(sales_channel)
		WHERE sk.host = $1`

	return r.scanWork(ctx, query, host)
}

func (r *WorkRepository) scanWork(ctx context.Context, query, host string) ([]domain.WorkItem, error) {
	rows, err := r.db.Query(ctx, query, host)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to load work set")
	}
	defer rows.Close()

	var out []domain.WorkItem
	for rows.Next() {
		var w domain.WorkItem
		if err := rows.Scan(&w.EAN, &w.SkuItemID, &w.SellerID, &w.StoreID, &w.PickupPointID,
			&w.PostalCode, &w.RetailerHost, &w.SalesChannel); err != nil {
			return nil, errors.InternalWrap(err, "failed to scan work item")
		}
		out = append(out, w)
	}
	return out, nil
}
