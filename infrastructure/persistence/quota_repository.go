package persistence

import (
	"context"
	"database/sql"
	"time"

	"ytpm/domain/repository"
)

// QuotaRepository accumulates per-day API usage in PostgreSQL.
type QuotaRepository struct{ db *sql.DB }

func NewQuotaRepository(db *sql.DB) *QuotaRepository { return &QuotaRepository{db: db} }

func (r *QuotaRepository) AddUsage(ctx context.Context, dateKey, scope string, delta int64) error {
	q := `INSERT INTO quota_usage (date_key, scope, used, updated_at)
		  VALUES ($1,$2,$3,$4)
		  ON CONFLICT (date_key, scope) DO UPDATE SET
			used = quota_usage.used + EXCLUDED.used,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, dateKey, scope, delta, time.Now().UTC())
	return err
}

func (r *QuotaRepository) GetUsage(ctx context.Context, dateKey, scope string) (int64, error) {
	row := r.db.QueryRowContext(ctx, `SELECT used FROM quota_usage WHERE date_key=$1 AND scope=$2`, dateKey, scope)
	var used int64
	if err := row.Scan(&used); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return used, nil
}

var _ repository.IQuotaUsage = (*QuotaRepository)(nil)
