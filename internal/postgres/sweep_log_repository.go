package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/database"
	"github.com/adeco-retail/vtexwatch/pkg/errors"
)

// SweepLogRepository tracks sweep lifecycle so that every background run is
// recorded, never orphaned.
type SweepLogRepository struct {
	db *database.DB
}

func NewSweepLogRepository(db *database.DB) *SweepLogRepository {
	return &SweepLogRepository{db: db}
}

func (r *SweepLogRepository) Open(ctx context.Context, host string, kind domain.SweepType) (*domain.SweepLog, error) {
	log := &domain.SweepLog{
		ID:           uuid.NewString(),
		RetailerHost: host,
		SweepType:    kind,
		StartedAt:    time.Now().UTC(),
		Status:       domain.SweepStatusRunning,
	}

	query := `
		INSERT INTO sweep_logs (id, retailer_host, sweep_type, started_at, status)
		VALUES ($1, $2, $3, $4, $5)`

	if err := r.db.Exec(ctx, query, log.ID, log.RetailerHost, log.SweepType, log.StartedAt, log.Status); err != nil {
		return nil, errors.InternalWrap(err, "failed to open sweep log")
	}
	return log, nil
}

func (r *SweepLogRepository) Close(ctx context.Context, id string, status domain.SweepStatus, notes string) error {
	tag, err := r.db.Pool().Exec(ctx, `
		UPDATE sweep_logs SET completed_at = now(), status = $1, notes = $2
		WHERE id = $3`, status, notes, id)
	if err != nil {
		return errors.InternalWrap(err, "failed to close sweep log")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("sweep log")
	}
	return nil
}

func (r *SweepLogRepository) Recent(ctx context.Context, host string, limit int) ([]domain.SweepLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, retailer_host, sweep_type, started_at, completed_at, status, notes
		FROM sweep_logs
		WHERE retailer_host = $1
		ORDER BY started_at DESC
		LIMIT $2`, host, limit)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to list recent sweep logs")
	}
	defer rows.Close()

	var out []domain.SweepLog
	for rows.Next() {
		var l domain.SweepLog
		if err := rows.Scan(&l.ID, &l.RetailerHost, &l.SweepType, &l.StartedAt, &l.CompletedAt, &l.Status, &l.Notes); err != nil {
			return nil, errors.InternalWrap(err, "failed to scan sweep log")
		}
		out = append(out, l)
	}
	return out, nil
}
