package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
	"github.com/ivankudzin/trustengine/internal/domain/rules"
)

const (
	topReasonsLimit      = 5
	topModeratorsLimit   = 5
	repeatOffendersLimit = 10
	defaultOpTimeout     = 10 * time.Second
)

type Source interface {
	ListResultsSince(ctx context.Context, cutoff time.Time) ([]model.ModerationResult, error)
	ListReportsSince(ctx context.Context, cutoff time.Time) ([]model.UserReport, error)
	ListActionsSince(ctx context.Context, cutoff time.Time) ([]model.ModerationAction, error)
	ListReportsByTarget(ctx context.Context, userID string) ([]model.UserReport, error)
	ListActionsByTarget(ctx context.Context, userID string) ([]model.ModerationAction, error)
}

type Offenders interface {
	Get(ctx context.Context, userID string) (int64, error)
	RepeatOffenders(ctx context.Context, minExclusive int64, limit int) ([]model.ViolationCount, error)
}

type Service struct {
	source    Source
	offenders Offenders
	opTimeout time.Duration
	now       func() time.Time
}

func NewService(source Source, offenders Offenders, opTimeout time.Duration) *Service {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Service{source: source, offenders: offenders, opTimeout: opTimeout, now: time.Now}
}

// GetModerationDashboard aggregates every record newer than now minus the range.
// Reads are not snapshot-isolated; concurrent writes may or may not be included.
func (s *Service) GetModerationDashboard(ctx context.Context, timeRange enums.TimeRange) (model.DashboardView, error) {
	if s.source == nil || s.offenders == nil {
		return model.DashboardView{}, fmt.Errorf("dashboard dependencies are not configured")
	}
	now := s.now().UTC()
	cutoff := timeRange.Cutoff(now)

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	results, err := s.source.ListResultsSince(ctx, cutoff)
	if err != nil {
		return model.DashboardView{}, fmt.Errorf("list moderation results: %w", err)
	}
	reports, err := s.source.ListReportsSince(ctx, cutoff)
	if err != nil {
		return model.DashboardView{}, fmt.Errorf("list reports: %w", err)
	}
	actionList, err := s.source.ListActionsSince(ctx, cutoff)
	if err != nil {
		return model.DashboardView{}, fmt.Errorf("list actions: %w", err)
	}
	offenders, err := s.offenders.RepeatOffenders(ctx, rules.RepeatOffenderThreshold, repeatOffendersLimit)
	if err != nil {
		return model.DashboardView{}, fmt.Errorf("list repeat offenders: %w", err)
	}

	view := Aggregate(cutoff, results, reports, actionList)
	view.TimeRange = timeRange.Label
	view.GeneratedAt = now.UnixMilli()
	view.RiskAnalysis.RepeatOffenders = offenders
	return view, nil
}

// Aggregate is the pure part of the dashboard: it filters by timestamp > cutoff and counts.
// RepeatOffenders is left empty; it comes from the violation store.
func Aggregate(cutoff time.Time, results []model.ModerationResult, reports []model.UserReport, actionList []model.ModerationAction) model.DashboardView {
	view := model.DashboardView{
		ContentModeration: model.ContentModerationStats{
			ByDecision: map[string]int{},
			ByType:     map[string]int{},
		},
		UserReports: model.UserReportStats{
			ByReason:   map[string]int{},
			ByPriority: map[string]int{},
			ByStatus:   map[string]int{},
		},
		ModerationActions: model.ModerationActionStats{
			ByType: map[string]int{},
		},
		RiskAnalysis: model.RiskAnalysis{RepeatOffenders: []model.ViolationCount{}},
	}

	reasons := map[string]int{}
	for _, r := range results {
		if !r.Timestamp.After(cutoff) {
			continue
		}
		view.ContentModeration.ByDecision[string(r.Decision)]++
		switch r.Decision {
		case enums.DecisionBlock:
			view.Overview.BlockedContent++
		case enums.DecisionFlag:
			view.Overview.FlaggedContent++
		}
		for _, fc := range r.FlaggedContent {
			view.ContentModeration.ByType[string(fc.Type)]++
		}
		for _, reason := range r.Reasons {
			reasons[reason]++
		}
	}

	for _, r := range reports {
		if !r.Timestamp.After(cutoff) {
			continue
		}
		view.Overview.TotalReports++
		if r.Status == enums.ReportStatusPending {
			view.Overview.PendingReports++
		}
		view.UserReports.ByReason[string(r.Reason)]++
		view.UserReports.ByPriority[string(r.Priority)]++
		view.UserReports.ByStatus[string(r.Status)]++
	}

	moderators := map[string]int{}
	for _, a := range actionList {
		if !a.Timestamp.After(cutoff) {
			continue
		}
		view.Overview.TotalActions++
		view.ModerationActions.ByType[string(a.Type)]++
		moderators[a.ModeratorID]++
	}

	view.ContentModeration.TopReasons = topN(reasons, topReasonsLimit)
	view.ModerationActions.TopModerators = topN(moderators, topModeratorsLimit)
	view.RiskAnalysis.TrendingViolations = append([]model.CountItem(nil), view.ContentModeration.TopReasons...)
	return view
}

func (s *Service) GetUserModerationHistory(ctx context.Context, userID string) (model.HistoryView, error) {
	userID = strings.TrimSpace(userID)
	if s.source == nil || s.offenders == nil {
		return model.HistoryView{}, fmt.Errorf("dashboard dependencies are not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	reports, err := s.source.ListReportsByTarget(ctx, userID)
	if err != nil {
		return model.HistoryView{}, fmt.Errorf("list reports for user: %w", err)
	}
	actionList, err := s.source.ListActionsByTarget(ctx, userID)
	if err != nil {
		return model.HistoryView{}, fmt.Errorf("list actions for user: %w", err)
	}
	violations, err := s.offenders.Get(ctx, userID)
	if err != nil {
		return model.HistoryView{}, fmt.Errorf("get violations for user: %w", err)
	}

	level := rules.UserRiskLevel(violations, actionList, len(reports))
	return model.HistoryView{
		UserID:          userID,
		Reports:         reports,
		Actions:         actionList,
		ViolationCount:  violations,
		RiskLevel:       level,
		Recommendations: rules.Recommendations(level, violations, len(reports)),
	}, nil
}

func topN(counts map[string]int, n int) []model.CountItem {
	items := make([]model.CountItem, 0, len(counts))
	for key, count := range counts {
		items = append(items, model.CountItem{Key: key, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Key < items[j].Key
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}
