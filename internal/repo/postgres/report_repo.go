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

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

const reportColumns = `id, reporter_id, target_user_id, target_message_id, reason, description, evidence,
	status, priority, created_at_ms, reviewed_by, resolution, reviewed_at_ms`

func (r *ReportRepo) CreateReport(ctx context.Context, report model.UserReport) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO user_reports (
	id,
	reporter_id,
	target_user_id,
	target_message_id,
	reason,
	description,
	evidence,
	status,
	priority,
	created_at_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`, report.ID, report.ReporterID, report.TargetUserID, report.TargetMessageID, string(report.Reason),
		report.Description, nonNilStrings(report.Evidence), string(report.Status), string(report.Priority),
		report.Timestamp.UnixMilli()); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (r *ReportRepo) ListPendingReports(ctx context.Context) ([]model.UserReport, error) {
	return r.list(ctx, `SELECT `+reportColumns+` FROM user_reports WHERE status = 'pending' ORDER BY created_at_ms ASC, seq ASC`)
}

func (r *ReportRepo) ListReportsSince(ctx context.Context, cutoff time.Time) ([]model.UserReport, error) {
	return r.list(ctx, `SELECT `+reportColumns+` FROM user_reports WHERE created_at_ms > $1 ORDER BY created_at_ms ASC, seq ASC`, cutoff.UnixMilli())
}

func (r *ReportRepo) ListReportsByTarget(ctx context.Context, userID string) ([]model.UserReport, error) {
	return r.list(ctx, `SELECT `+reportColumns+` FROM user_reports WHERE target_user_id = $1 ORDER BY created_at_ms ASC, seq ASC`, userID)
}

// MarkReviewed is a compare-and-set on status. The follow-up read tells a
// missing report apart from one another reviewer already closed.
func (r *ReportRepo) MarkReviewed(ctx context.Context, id, reviewerID, resolution string, at time.Time) (model.UserReport, error) {
	var out model.UserReport
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
UPDATE user_reports
SET status = 'reviewed',
	reviewed_by = $2,
	resolution = $3,
	reviewed_at_ms = $4
WHERE id = $1
  AND status = 'pending'
RETURNING `+reportColumns, id, reviewerID, resolution, at.UnixMilli())

		report, err := scanReport(row)
		if err == nil {
			out = report
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("mark report reviewed: %w", err)
		}

		var status string
		if err := tx.QueryRow(ctx, `SELECT status FROM user_reports WHERE id = $1`, id).Scan(&status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrReportNotFound
			}
			return fmt.Errorf("read report status: %w", err)
		}
		return model.ErrReportAlreadyReviewed
	})
	if err != nil {
		return model.UserReport{}, err
	}
	return out, nil
}

// ReopenReport reverts a review back to pending, but only the one made by reviewerID.
func (r *ReportRepo) ReopenReport(ctx context.Context, id, reviewerID string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	tag, err := r.pool.Exec(ctx, `
UPDATE user_reports
SET status = 'pending',
	reviewed_by = NULL,
	resolution = NULL,
	reviewed_at_ms = NULL
WHERE id = $1
  AND status = 'reviewed'
  AND reviewed_by = $2`, id, reviewerID)
	if err != nil {
		return false, fmt.Errorf("reopen report: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ReportRepo) list(ctx context.Context, query string, args ...any) ([]model.UserReport, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := make([]model.UserReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

func scanReport(row pgx.Row) (model.UserReport, error) {
	var (
		report       model.UserReport
		reason       string
		status       string
		priority     string
		createdAtMS  int64
		reviewedAtMS *int64
	)
	if err := row.Scan(&report.ID, &report.ReporterID, &report.TargetUserID, &report.TargetMessageID, &reason,
		&report.Description, &report.Evidence, &status, &priority, &createdAtMS, &report.ReviewedBy,
		&report.Resolution, &reviewedAtMS); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserReport{}, err
		}
		return model.UserReport{}, fmt.Errorf("scan report: %w", err)
	}
	report.Reason = enums.ReportReason(reason)
	report.Status = enums.ReportStatus(status)
	report.Priority = enums.Priority(priority)
	report.Timestamp = time.UnixMilli(createdAtMS).UTC()
	if reviewedAtMS != nil {
		at := time.UnixMilli(*reviewedAtMS).UTC()
		report.ReviewedAt = &at
	}
	return report, nil
}
