package persistence

import (
	"context"
	"database/sql"
	"time"

	"ytpm/domain/repository"
)

// IdempotencyRepository is the append-only registry of submission keys.
type IdempotencyRepository struct{ db *sql.DB }

func NewIdempotencyRepository(db *sql.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

func (r *IdempotencyRepository) Exists(ctx context.Context, key string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT 1 FROM idempotency_keys WHERE key=$1`, key)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Register claims the key. ON CONFLICT DO NOTHING makes the claim race-safe;
// a zero rows-affected result means someone else got there first.
func (r *IdempotencyRepository) Register(ctx context.Context, key string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO idempotency_keys (key, created_at) VALUES ($1,$2) ON CONFLICT (key) DO NOTHING`,
		key, time.Now().UTC())
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 0, nil
}

var _ repository.IIdempotencyStore = (*IdempotencyRepository)(nil)
