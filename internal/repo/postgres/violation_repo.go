package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/trustengine/internal/domain/model"
)

// ViolationRepo keeps counters in user_violations. The upsert takes a row lock,
// so concurrent increments for one user serialize.
type ViolationRepo struct {
	pool *pgxpool.Pool
}

func NewViolationRepo(pool *pgxpool.Pool) *ViolationRepo {
	return &ViolationRepo{pool: pool}
}

func (r *ViolationRepo) Increment(ctx context.Context, userID string) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	var count int64
	if err := r.pool.QueryRow(ctx, `
INSERT INTO user_violations (user_id, count, updated_at)
VALUES ($1, 1, NOW())
ON CONFLICT (user_id) DO UPDATE SET
	count = user_violations.count + 1,
	updated_at = NOW()
RETURNING count
`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("increment user violations: %w", err)
	}
	return count, nil
}

func (r *ViolationRepo) Get(ctx context.Context, userID string) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT count FROM user_violations WHERE user_id = $1`, userID).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get user violations: %w", err)
	}
	return count, nil
}

func (r *ViolationRepo) TopOffenders(ctx context.Context, minExclusive int64, limit int) ([]model.ViolationCount, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	rows, err := r.pool.Query(ctx, `
SELECT user_id, count
FROM user_violations
WHERE count > $1
ORDER BY count DESC, user_id ASC
LIMIT $2
`, minExclusive, limit)
	if err != nil {
		return nil, fmt.Errorf("list top offenders: %w", err)
	}
	defer rows.Close()

	out := make([]model.ViolationCount, 0)
	for rows.Next() {
		var item model.ViolationCount
		if err := rows.Scan(&item.UserID, &item.Count); err != nil {
			return nil, fmt.Errorf("scan offender: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offenders: %w", err)
	}
	return out, nil
}
