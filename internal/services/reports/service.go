package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
	"github.com/ivankudzin/trustengine/internal/domain/rules"
	"github.com/ivankudzin/trustengine/internal/metrics"
	"github.com/ivankudzin/trustengine/internal/services/actions"
)

const (
	MaxDescriptionRunes = 2000
	MaxEvidenceItems    = 10
	ResolutionPrefix    = "Report resolution: "
	defaultOpTimeout    = 3 * time.Second
)

var (
	ErrValidation            = errors.New("validation error")
	ErrRateLimited           = errors.New("report rate limit exceeded")
	ErrReportAlreadyReviewed = model.ErrReportAlreadyReviewed
)

// RateLimitError matches ErrRateLimited and carries the time left in the window.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s, retry after %s", ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

type Store interface {
	CreateReport(ctx context.Context, report model.UserReport) error
	ListPendingReports(ctx context.Context) ([]model.UserReport, error)
	MarkReviewed(ctx context.Context, id, reviewerID, resolution string, at time.Time) (model.UserReport, error)
	ReopenReport(ctx context.Context, id, reviewerID string) (bool, error)
}

type ViolationReader interface {
	Get(ctx context.Context, userID string) (int64, error)
}

type ActionTaker interface {
	TakeModerationAction(ctx context.Context, req actions.Request) (actions.Outcome, error)
}

// RateLimiter is keyed by reporter id.
type RateLimiter interface {
	Allow(ctx context.Context, subject string) (time.Duration, bool, error)
}

type Notifier interface {
	NotifyUrgentReport(ctx context.Context, report model.UserReport) error
}

type Config struct {
	OpTimeout time.Duration
}

type Service struct {
	store      Store
	violations ViolationReader
	actions    ActionTaker
	cfg        Config
	logger     *zap.Logger

	limiter  RateLimiter
	notifier Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

type SubmitInput struct {
	ReporterID      string
	TargetUserID    string
	Reason          string
	Description     string
	TargetMessageID *string
	Evidence        []string
}

type ReviewInput struct {
	ReportID   string
	ReviewerID string
	Decision   string
	Resolution string
}

// ReviewResult is returned by a winning review. Action is nil for dismissals.
type ReviewResult struct {
	Report model.UserReport
	Action *actions.Outcome
}

func NewService(store Store, violations ViolationReader, actionTaker ActionTaker, cfg Config, logger *zap.Logger) *Service {
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = defaultOpTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		violations: violations,
		actions:    actionTaker,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) AttachRateLimiter(limiter RateLimiter) {
	s.limiter = limiter
}

func (s *Service) AttachNotifier(notifier Notifier) {
	s.notifier = notifier
}

func (s *Service) AttachMetrics(m *metrics.Metrics) {
	s.metrics = m
}

func (s *Service) SubmitReport(ctx context.Context, in SubmitInput) (model.UserReport, error) {
	reason, err := validateSubmit(&in)
	if err != nil {
		return model.UserReport{}, err
	}
	if s.store == nil || s.violations == nil {
		return model.UserReport{}, fmt.Errorf("report service dependencies are not configured")
	}
	if err := s.checkRate(ctx, in.ReporterID); err != nil {
		return model.UserReport{}, err
	}

	violationCount, err := s.violations.Get(ctx, in.TargetUserID)
	if err != nil {
		return model.UserReport{}, fmt.Errorf("read target violations: %w", err)
	}

	computed := rules.ComputeReportPriority(reason, violationCount)
	priority := rules.EscalateReportPriority(computed, violationCount)

	report := model.UserReport{
		ID:              uuid.NewString(),
		ReporterID:      in.ReporterID,
		TargetUserID:    in.TargetUserID,
		TargetMessageID: in.TargetMessageID,
		Reason:          reason,
		Description:     in.Description,
		Evidence:        in.Evidence,
		Status:          enums.ReportStatusPending,
		Priority:        priority,
		Timestamp:       s.now().UTC(),
	}

	opCtx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()
	if err := s.store.CreateReport(opCtx, report); err != nil {
		return model.UserReport{}, fmt.Errorf("create report: %w", err)
	}

	s.metrics.ObserveReport(string(priority))
	s.logger.Info("report submitted",
		zap.String("report_id", report.ID),
		zap.String("target_user_id", report.TargetUserID),
		zap.String("reason", string(reason)),
		zap.String("computed_priority", string(computed)),
		zap.String("priority", string(priority)),
	)

	if priority == enums.PriorityUrgent && s.notifier != nil {
		if err := s.notifier.NotifyUrgentReport(ctx, report); err != nil {
			s.logger.Warn("urgent report notification failed",
				zap.String("report_id", report.ID),
				zap.Error(err),
			)
		}
	}

	return report.Clone(), nil
}

// GetPendingReports returns pending reports, most urgent first. Equal priorities keep submission order.
func (s *Service) GetPendingReports(ctx context.Context, priority *enums.Priority) ([]model.UserReport, error) {
	if s.store == nil {
		return nil, fmt.Errorf("report store is nil")
	}

	opCtx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()
	pending, err := s.store.ListPendingReports(opCtx)
	if err != nil {
		return nil, fmt.Errorf("list pending reports: %w", err)
	}

	out := make([]model.UserReport, 0, len(pending))
	for _, r := range pending {
		if r.Status != enums.ReportStatusPending {
			continue
		}
		if priority != nil && r.Priority != *priority {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Weight() > out[j].Priority.Weight()
	})
	return out, nil
}

// ReviewReport returns (nil, nil) for an unknown report. A report that is no longer
// pending yields ErrReportAlreadyReviewed and nothing changes. If the sanction cannot
// be recorded the report goes back to pending.
func (s *Service) ReviewReport(ctx context.Context, in ReviewInput) (*ReviewResult, error) {
	in.ReportID = strings.TrimSpace(in.ReportID)
	in.ReviewerID = strings.TrimSpace(in.ReviewerID)
	in.Resolution = strings.TrimSpace(in.Resolution)
	decision, ok := enums.ParseReviewDecision(in.Decision)
	if !ok {
		return nil, fmt.Errorf("%w: unknown review decision %q", ErrValidation, in.Decision)
	}
	if in.ReviewerID == "" {
		return nil, fmt.Errorf("%w: reviewer id is required", ErrValidation)
	}
	if in.ReportID == "" {
		return nil, nil
	}
	if s.store == nil {
		return nil, fmt.Errorf("report store is nil")
	}
	actionType, takesAction := decision.ActionType()
	if takesAction && s.actions == nil {
		return nil, fmt.Errorf("action executor is not configured")
	}

	opCtx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
	report, err := s.store.MarkReviewed(opCtx, in.ReportID, in.ReviewerID, in.Resolution, s.now().UTC())
	cancel()
	if err != nil {
		if errors.Is(err, model.ErrReportNotFound) {
			return nil, nil
		}
		if errors.Is(err, model.ErrReportAlreadyReviewed) {
			return nil, err
		}
		return nil, fmt.Errorf("mark report reviewed: %w", err)
	}

	s.logger.Info("report reviewed",
		zap.String("report_id", report.ID),
		zap.String("reviewer_id", in.ReviewerID),
		zap.String("decision", string(decision)),
	)

	result := &ReviewResult{Report: report}
	if !takesAction {
		return result, nil
	}

	outcome, err := s.actions.TakeModerationAction(ctx, actions.Request{
		Type:            actionType,
		TargetUserID:    report.TargetUserID,
		ModeratorID:     in.ReviewerID,
		Reason:          ResolutionPrefix + in.Resolution,
		TargetMessageID: report.TargetMessageID,
	})
	if err != nil {
		s.reopen(ctx, report.ID, in.ReviewerID)
		return nil, fmt.Errorf("take action for report %s: %w", report.ID, err)
	}
	result.Action = &outcome
	return result, nil
}

// reopen puts a report back to pending when its sanction could not be recorded,
// so the review can be retried.
func (s *Service) reopen(ctx context.Context, reportID, reviewerID string) {
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.OpTimeout)
	defer cancel()

	reopened, err := s.store.ReopenReport(opCtx, reportID, reviewerID)
	if err != nil {
		s.logger.Error("reopen report after failed action",
			zap.String("report_id", reportID),
			zap.String("reviewer_id", reviewerID),
			zap.Error(err),
		)
		return
	}
	if reopened {
		s.logger.Warn("report reopened after failed action",
			zap.String("report_id", reportID),
			zap.String("reviewer_id", reviewerID),
		)
	}
}

// checkRate fails open when the limiter itself is unavailable.
func (s *Service) checkRate(ctx context.Context, reporterID string) error {
	if s.limiter == nil {
		return nil
	}
	opCtx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	retryAfter, allowed, err := s.limiter.Allow(opCtx, reporterID)
	if err != nil {
		s.logger.Warn("report rate limiter unavailable", zap.Error(err))
		return nil
	}
	if !allowed {
		return &RateLimitError{RetryAfter: retryAfter}
	}
	return nil
}

func validateSubmit(in *SubmitInput) (enums.ReportReason, error) {
	in.ReporterID = strings.TrimSpace(in.ReporterID)
	in.TargetUserID = strings.TrimSpace(in.TargetUserID)
	in.Description = strings.TrimSpace(in.Description)

	if in.ReporterID == "" || in.TargetUserID == "" {
		return "", fmt.Errorf("%w: reporter and target user are required", ErrValidation)
	}
	if in.ReporterID == in.TargetUserID {
		return "", fmt.Errorf("%w: users cannot report themselves", ErrValidation)
	}
	reason, ok := enums.ParseReportReason(in.Reason)
	if !ok {
		return "", fmt.Errorf("%w: unknown report reason %q", ErrValidation, in.Reason)
	}
	if utf8.RuneCountInString(in.Description) > MaxDescriptionRunes {
		return "", fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionRunes)
	}
	if len(in.Evidence) > MaxEvidenceItems {
		return "", fmt.Errorf("%w: at most %d evidence items", ErrValidation, MaxEvidenceItems)
	}
	if in.TargetMessageID != nil && strings.TrimSpace(*in.TargetMessageID) == "" {
		in.TargetMessageID = nil
	}
	return reason, nil
}
