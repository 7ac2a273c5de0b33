package postgres

import (
	"context"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/database"
	"github.com/adeco-retail/vtexwatch/pkg/errors"
)

// ProductRepository is written by Catalog Sync and Targeted Discovery,
// keyed by (host, external_id).
type ProductRepository struct {
	db *database.DB
}

func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Upsert(ctx context.Context, p domain.Product) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, errors.InternalWrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var dbID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO products (host, external_id, name, brand, brand_id, link_text, link, cache_id, release_date, raw_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (host, external_id) DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			brand_id = EXCLUDED.brand_id,
			link_text = EXCLUDED.link_text,
			link = EXCLUDED.link,
			cache_id = EXCLUDED.cache_id,
			release_date = EXCLUDED.release_date,
			raw_json = EXCLUDED.raw_json
		RETURNING id`,
		p.Host, p.ExternalID, p.Name, p.Brand, p.BrandID, p.LinkText, p.Link, p.CacheID, p.ReleaseDate, p.RawJSON,
	).Scan(&dbID)
	if err != nil {
		return 0, errors.InternalWrap(err, "failed to upsert product")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errors.InternalWrap(err, "failed to commit transaction")
	}
	return dbID, nil
}

// ReplaceCategoryLinks diffs the product's current links against
// categoryExternalIDs and applies only the add/remove delta, rather than
// deleting and reinserting every row on every sync pass.
func (r *ProductRepository) ReplaceCategoryLinks(ctx context.Context, productDbID int64, categoryExternalIDs []int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return errors.InternalWrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var host string
	if err := tx.QueryRow(ctx, `SELECT host FROM products WHERE id = $1`, productDbID).Scan(&host); err != nil {
		return errors.InternalWrap(err, "failed to resolve product host")
	}

	rows, err := tx.Query(ctx, `
		SELECT c.external_id
		FROM product_category_links l
		JOIN categories c ON c.id = l.category_db_id
		WHERE l.product_db_id = $1`, productDbID)
	if err != nil {
		return errors.InternalWrap(err, "failed to load current category links")
	}
	current := make(map[int64]bool)
	for rows.Next() {
		var extID int64
		if err := rows.Scan(&extID); err != nil {
			rows.Close()
			return errors.InternalWrap(err, "failed to scan category link")
		}
		current[extID] = true
	}
	rows.Close()

	wanted := make(map[int64]bool, len(categoryExternalIDs))
	for _, id := range categoryExternalIDs {
		wanted[id] = true
	}

	for extID := range wanted {
		if current[extID] {
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_category_links (product_db_id, category_db_id)
			SELECT $1, c.id FROM categories c WHERE c.external_id = $2 AND c.host = $3
			ON CONFLICT DO NOTHING`, productDbID, extID, host); err != nil {
			return errors.InternalWrap(err, "failed to add category link")
		}
	}

	for extID := range current {
		if wanted[extID] {
			continue
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM product_category_links
			WHERE product_db_id = $1
			AND category_db_id = (SELECT id FROM categories WHERE external_id = $2 AND host = $3)`, productDbID, extID, host); err != nil {
			return errors.InternalWrap(err, "failed to remove category link")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.InternalWrap(err, "failed to commit transaction")
	}
	return nil
}
