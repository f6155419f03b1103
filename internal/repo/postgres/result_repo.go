package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
)

type ResultRepo struct {
	pool *pgxpool.Pool
}

func NewResultRepo(pool *pgxpool.Pool) *ResultRepo {
	return &ResultRepo{pool: pool}
}

func (r *ResultRepo) SaveResult(ctx context.Context, result model.ModerationResult) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	flagged, err := json.Marshal(result.FlaggedContent)
	if err != nil {
		return fmt.Errorf("marshal flagged content: %w", err)
	}
	riskFactors := make([]string, 0, len(result.RiskFactors))
	for _, f := range result.RiskFactors {
		riskFactors = append(riskFactors, string(f))
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO moderation_results (
	id,
	user_id,
	room_id,
	message_id,
	decision,
	confidence,
	reasons,
	flagged_content,
	risk_factors,
	review_required,
	created_at_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`, result.ID, result.UserID, result.RoomID, result.MessageID, string(result.Decision), result.Confidence,
		nonNilStrings(result.Reasons), flagged, riskFactors, result.ReviewRequired, result.Timestamp.UnixMilli()); err != nil {
		return fmt.Errorf("insert moderation result: %w", err)
	}
	return nil
}

func (r *ResultRepo) ListResultsSince(ctx context.Context, cutoff time.Time) ([]model.ModerationResult, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, room_id, message_id, decision, confidence, reasons, flagged_content, risk_factors, review_required, created_at_ms
FROM moderation_results
WHERE created_at_ms > $1
ORDER BY created_at_ms ASC
`, cutoff.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list moderation results: %w", err)
	}
	defer rows.Close()

	out := make([]model.ModerationResult, 0)
	for rows.Next() {
		var (
			item        model.ModerationResult
			decision    string
			flagged     []byte
			riskFactors []string
			createdAtMS int64
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.RoomID, &item.MessageID, &decision, &item.Confidence,
			&item.Reasons, &flagged, &riskFactors, &item.ReviewRequired, &createdAtMS); err != nil {
			return nil, fmt.Errorf("scan moderation result: %w", err)
		}
		item.Decision = enums.Decision(decision)
		if len(flagged) > 0 {
			if err := json.Unmarshal(flagged, &item.FlaggedContent); err != nil {
				return nil, fmt.Errorf("decode flagged content: %w", err)
			}
		}
		for _, f := range riskFactors {
			item.RiskFactors = append(item.RiskFactors, enums.RiskFactor(f))
		}
		item.Timestamp = time.UnixMilli(createdAtMS).UTC()
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moderation results: %w", err)
	}
	return out, nil
}

func (r *ResultRepo) DeleteResultsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM moderation_results WHERE created_at_ms < $1`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete moderation results: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
