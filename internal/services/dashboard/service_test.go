package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
	"github.com/ivankudzin/trustengine/internal/repo/memory"
	"github.com/ivankudzin/trustengine/internal/services/violations"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()

	results := []model.ModerationResult{
		{ID: "r1", Decision: enums.DecisionBlock, Reasons: []string{"high toxicity"}, FlaggedContent: []model.FlaggedContent{{Type: enums.ContentTypeToxic}}, Timestamp: now.Add(-time.Hour)},
		{ID: "r2", Decision: enums.DecisionFlag, Reasons: []string{"spam content", "toxic content"}, FlaggedContent: []model.FlaggedContent{{Type: enums.ContentTypeSpam}, {Type: enums.ContentTypeToxic}}, Timestamp: now.Add(-2 * time.Hour)},
		{ID: "r3", Decision: enums.DecisionAllow, Timestamp: now.Add(-3 * time.Hour)},
		{ID: "r4", Decision: enums.DecisionBlock, Reasons: []string{"spam detected"}, Timestamp: now.Add(-48 * time.Hour)},
		{ID: "r5", Decision: enums.DecisionFlag, Reasons: []string{"spam content"}, Timestamp: now.Add(-20 * 24 * time.Hour)},
	}
	for _, r := range results {
		if err := store.SaveResult(ctx, r); err != nil {
			t.Fatalf("save result: %v", err)
		}
	}

	reports := []model.UserReport{
		{ID: "p1", TargetUserID: "u1", Reason: enums.ReportReasonSpam, Status: enums.ReportStatusPending, Priority: enums.PriorityLow, Timestamp: now.Add(-time.Hour)},
		{ID: "p2", TargetUserID: "u1", Reason: enums.ReportReasonHarassment, Status: enums.ReportStatusReviewed, Priority: enums.PriorityUrgent, Timestamp: now.Add(-5 * 24 * time.Hour)},
	}
	for _, r := range reports {
		if err := store.CreateReport(ctx, r); err != nil {
			t.Fatalf("create report: %v", err)
		}
	}

	actionList := []model.ModerationAction{
		{ID: "a1", Type: enums.ActionTypeMute, TargetUserID: "u1", ModeratorID: "m1", Timestamp: now.Add(-time.Hour)},
		{ID: "a2", Type: enums.ActionTypeWarn, TargetUserID: "u2", ModeratorID: "m2", Timestamp: now.Add(-2 * time.Hour)},
		{ID: "a3", Type: enums.ActionTypeBan, TargetUserID: "u1", ModeratorID: "m1", Timestamp: now.Add(-10 * 24 * time.Hour)},
	}
	for _, a := range actionList {
		if err := store.SaveAction(ctx, a); err != nil {
			t.Fatalf("save action: %v", err)
		}
	}

	for i := 0; i < 4; i++ {
		_, _ = store.Increment(ctx, "u1")
	}
	_, _ = store.Increment(ctx, "u2")
}

func newTestService(store *memory.Store) *Service {
	svc := NewService(store, violations.NewTracker(store, time.Second), time.Second)
	svc.now = func() time.Time { return now }
	return svc
}

func TestDashboard24h(t *testing.T) {
	store := memory.NewStore()
	seed(t, store)
	svc := newTestService(store)

	view, err := svc.GetModerationDashboard(context.Background(), enums.TimeRange24h)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if view.TimeRange != "24h" || view.GeneratedAt != now.UnixMilli() {
		t.Fatalf("unexpected header: %s %d", view.TimeRange, view.GeneratedAt)
	}
	o := view.Overview
	if o.TotalReports != 1 || o.PendingReports != 1 || o.TotalActions != 2 || o.BlockedContent != 1 || o.FlaggedContent != 1 {
		t.Fatalf("unexpected overview: %+v", o)
	}
	if view.ContentModeration.ByDecision["allow"] != 1 || view.ContentModeration.ByType["toxic"] != 2 {
		t.Fatalf("unexpected content stats: %+v", view.ContentModeration)
	}
	top := view.ContentModeration.TopReasons
	if len(top) != 3 || top[0].Key != "high toxicity" || top[1].Key != "spam content" || top[2].Key != "toxic content" {
		t.Fatalf("top reasons should tie-break by key: %+v", top)
	}
	if len(view.RiskAnalysis.TrendingViolations) != len(top) {
		t.Fatalf("trending violations should mirror top reasons")
	}
	if len(view.ModerationActions.TopModerators) != 2 {
		t.Fatalf("unexpected top moderators: %+v", view.ModerationActions.TopModerators)
	}
	if off := view.RiskAnalysis.RepeatOffenders; len(off) != 1 || off[0].UserID != "u1" || off[0].Count != 4 {
		t.Fatalf("unexpected repeat offenders: %+v", off)
	}
}

func TestDashboardMatchesIndependentFiltering(t *testing.T) {
	store := memory.NewStore()
	seed(t, store)
	svc := newTestService(store)
	ctx := context.Background()

	for _, tr := range []enums.TimeRange{enums.TimeRange24h, enums.TimeRange7d, enums.TimeRange30d} {
		view, err := svc.GetModerationDashboard(ctx, tr)
		if err != nil {
			t.Fatalf("dashboard %s: %v", tr.Label, err)
		}
		again, _ := svc.GetModerationDashboard(ctx, tr)
		if view.Overview != again.Overview {
			t.Fatalf("recomputation changed overview for %s", tr.Label)
		}

		cutoff := tr.Cutoff(now)
		all, _ := store.ListResultsSince(ctx, time.Time{})
		blocked := 0
		for _, r := range all {
			if r.Timestamp.After(cutoff) && r.Decision == enums.DecisionBlock {
				blocked++
			}
		}
		allActions, _ := store.ListActionsSince(ctx, time.Time{})
		actionCount := 0
		for _, a := range allActions {
			if a.Timestamp.After(cutoff) {
				actionCount++
			}
		}
		if view.Overview.BlockedContent != blocked || view.Overview.TotalActions != actionCount {
			t.Fatalf("%s: dashboard %+v disagrees with raw filtering blocked=%d actions=%d", tr.Label, view.Overview, blocked, actionCount)
		}
	}
}

func TestUserModerationHistory(t *testing.T) {
	store := memory.NewStore()
	seed(t, store)
	svc := newTestService(store)

	history, err := svc.GetUserModerationHistory(context.Background(), "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history.Reports) != 2 || len(history.Actions) != 2 || history.ViolationCount != 4 {
		t.Fatalf("unexpected history: %+v", history)
	}
	if history.RiskLevel != enums.RiskLevelCritical {
		t.Fatalf("ban should make the user critical, got %s", history.RiskLevel)
	}
	if len(history.Recommendations) == 0 {
		t.Fatalf("expected recommendations")
	}

	clean, _ := svc.GetUserModerationHistory(context.Background(), "nobody")
	if clean.RiskLevel != enums.RiskLevelLow || clean.ViolationCount != 0 {
		t.Fatalf("unexpected clean history: %+v", clean)
	}
}
