// Package postgres implements internal/domain's repository ports against
// PostgreSQL via pgx, following the transaction and error-wrapping pattern
// the catalog bounded context used for its own persistence layer.
package postgres

import (
	"context"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/database"
	"github.com/adeco-retail/vtexwatch/pkg/errors"
)

// RetailerRepository reads the operator-curated retailers table.
type RetailerRepository struct {
	db *database.DB
}

func NewRetailerRepository(db *database.DB) *RetailerRepository {
	return &RetailerRepository{db: db}
}

func (r *RetailerRepository) ListEnabled(ctx context.Context, hostFilter string) ([]domain.Retailer, error) {
	query := `
		SELECT id, name, host, sales_channels, enabled
		FROM retailers
		WHERE enabled = true AND ($1 = '' OR host = $1)
		ORDER BY host`

	rows, err := r.db.Query(ctx, query, hostFilter)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to list retailers")
	}
	defer rows.Close()

	var out []domain.Retailer
	for rows.Next() {
		var ret domain.Retailer
		if err := rows.Scan(&ret.ID, &ret.Name, &ret.Host, &ret.SalesChannels, &ret.Enabled); err != nil {
			return nil, errors.InternalWrap(err, "failed to scan retailer")
		}
		out = append(out, ret)
	}
	return out, nil
}
