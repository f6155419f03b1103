package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
)

type ActionRepo struct {
	pool *pgxpool.Pool
}

func NewActionRepo(pool *pgxpool.Pool) *ActionRepo {
	return &ActionRepo{pool: pool}
}

const actionColumns = `id, type, target_user_id, target_message_id, moderator_id, reason, duration_ms, created_at_ms, reversed`

func (r *ActionRepo) SaveAction(ctx context.Context, action model.ModerationAction) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	var durationMS *int64
	if action.Duration != nil {
		ms := action.Duration.Milliseconds()
		durationMS = &ms
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO moderation_actions (
	id,
	type,
	target_user_id,
	target_message_id,
	moderator_id,
	reason,
	duration_ms,
	created_at_ms,
	reversed
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
`, action.ID, string(action.Type), action.TargetUserID, action.TargetMessageID, action.ModeratorID,
		action.Reason, durationMS, action.Timestamp.UnixMilli()); err != nil {
		return fmt.Errorf("insert moderation action: %w", err)
	}
	return nil
}

func (r *ActionRepo) GetAction(ctx context.Context, id string) (model.ModerationAction, error) {
	if r.pool == nil {
		return model.ModerationAction{}, fmt.Errorf("postgres pool is nil")
	}
	action, err := scanAction(r.pool.QueryRow(ctx, `SELECT `+actionColumns+` FROM moderation_actions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ModerationAction{}, model.ErrActionNotFound
	}
	return action, err
}

func (r *ActionRepo) MarkReversed(ctx context.Context, id string) (model.ModerationAction, error) {
	var out model.ModerationAction
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		action, err := scanAction(tx.QueryRow(ctx, `
UPDATE moderation_actions
SET reversed = TRUE
WHERE id = $1
  AND reversed = FALSE
RETURNING `+actionColumns, id))
		if err == nil {
			out = action
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("mark action reversed: %w", err)
		}

		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM moderation_actions WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check action exists: %w", err)
		}
		if !exists {
			return model.ErrActionNotFound
		}
		return model.ErrActionAlreadyReversed
	})
	if err != nil {
		return model.ModerationAction{}, err
	}
	return out, nil
}

func (r *ActionRepo) ListActionsSince(ctx context.Context, cutoff time.Time) ([]model.ModerationAction, error) {
	return r.list(ctx, `SELECT `+actionColumns+` FROM moderation_actions WHERE created_at_ms > $1 ORDER BY created_at_ms ASC, seq ASC`, cutoff.UnixMilli())
}

func (r *ActionRepo) ListActionsByTarget(ctx context.Context, userID string) ([]model.ModerationAction, error) {
	return r.list(ctx, `SELECT `+actionColumns+` FROM moderation_actions WHERE target_user_id = $1 ORDER BY created_at_ms ASC, seq ASC`, userID)
}

func (r *ActionRepo) list(ctx context.Context, query string, args ...any) ([]model.ModerationAction, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list moderation actions: %w", err)
	}
	defer rows.Close()

	out := make([]model.ModerationAction, 0)
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moderation actions: %w", err)
	}
	return out, nil
}

func scanAction(row pgx.Row) (model.ModerationAction, error) {
	var (
		action      model.ModerationAction
		actionType  string
		durationMS  *int64
		createdAtMS int64
	)
	if err := row.Scan(&action.ID, &actionType, &action.TargetUserID, &action.TargetMessageID, &action.ModeratorID,
		&action.Reason, &durationMS, &createdAtMS, &action.Reversed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ModerationAction{}, err
		}
		return model.ModerationAction{}, fmt.Errorf("scan moderation action: %w", err)
	}
	action.Type = enums.ActionType(actionType)
	action.Timestamp = time.UnixMilli(createdAtMS).UTC()
	if durationMS != nil {
		d := time.Duration(*durationMS) * time.Millisecond
		action.Duration = &d
	}
	return action, nil
}
