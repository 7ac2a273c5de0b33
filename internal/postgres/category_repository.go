package postgres

import (
	"context"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/database"
	"github.com/adeco-retail/vtexwatch/pkg/errors"
)

// CategoryRepository is written by Catalog Sync, keyed by (host, external_id).
// ParentDbID starts unresolved (0) and is filled in by the sync's second pass
// once every node in the tree has been created.
type CategoryRepository struct {
	db *database.DB
}

func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Upsert(ctx context.Context, c domain.Category) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, errors.InternalWrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var dbID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO categories (host, external_id, name, parent_external_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (host, external_id) DO UPDATE SET
			name = EXCLUDED.name,
			parent_external_id = EXCLUDED.parent_external_id
		RETURNING id`,
		c.Host, c.ExternalID, c.Name, c.ParentExternalID,
	).Scan(&dbID)
	if err != nil {
		return 0, errors.InternalWrap(err, "failed to upsert category")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errors.InternalWrap(err, "failed to commit transaction")
	}
	return dbID, nil
}

func (r *CategoryRepository) ListByHost(ctx context.Context, host string) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, host, external_id, name, parent_external_id, parent_db_id
		FROM categories WHERE host = $1`, host)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to list categories")
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.DbID, &c.Host, &c.ExternalID, &c.Name, &c.ParentExternalID, &c.ParentDbID); err != nil {
			return nil, errors.InternalWrap(err, "failed to scan category")
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *CategoryRepository) UpdateParentDbID(ctx context.Context, dbID, parentDbID int64) error {
	if err := r.db.Exec(ctx, `UPDATE categories SET parent_db_id = $1 WHERE id = $2`, parentDbID, dbID); err != nil {
		return errors.InternalWrap(err, "failed to update category parent")
	}
	return nil
}
