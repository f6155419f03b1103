package moderation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
	"github.com/ivankudzin/trustengine/internal/repo/memory"
	"github.com/ivankudzin/trustengine/internal/services/analyzer"
	"github.com/ivankudzin/trustengine/internal/services/violations"
)

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, model.ContentItem) (model.Analysis, error) {
	return model.Analysis{}, analyzer.ErrAnalysisFailed
}

type failingCounter struct{}

func (failingCounter) Increment(context.Context, string) (int64, error) {
	return 0, errors.New("redis down")
}

func newTestService(store *memory.Store) *Service {
	tracker := violations.NewTracker(store, time.Second)
	return NewService(store, analyzer.New(nil, tracker), tracker, Config{}, nil)
}

func content(text, userID string) model.ContentItem {
	return model.ContentItem{Text: text, Metadata: model.ContentMetadata{UserID: userID, RoomID: "room-1"}}
}

func TestModerateCleanContentIsAllowed(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	result, err := svc.ModerateContent(context.Background(), content("Hello everyone, how are you today?", "u1"))
	if err != nil {
		t.Fatalf("moderate: %v", err)
	}
	if result.Decision != enums.DecisionAllow || result.Confidence != 0 {
		t.Fatalf("expected allow/0, got %s/%v", result.Decision, result.Confidence)
	}
	if count, _ := store.Get(context.Background(), "u1"); count != 0 {
		t.Fatalf("allow must not count as violation, got %d", count)
	}
	saved, _ := store.ListResultsSince(context.Background(), time.Time{})
	if len(saved) != 1 || saved[0].ID != result.ID {
		t.Fatalf("expected result to be saved, got %+v", saved)
	}
}

func TestModerateToxicContentBlocksAndCounts(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	result, err := svc.ModerateContent(context.Background(), content("hate hate hate stupid idiot kill yourself moron", "u1"))
	if err != nil {
		t.Fatalf("moderate: %v", err)
	}
	if result.Decision != enums.DecisionBlock && result.Decision != enums.DecisionFlag {
		t.Fatalf("expected block or flag, got %s", result.Decision)
	}
	if result.Confidence <= 0 {
		t.Fatalf("expected positive confidence")
	}
	if len(result.FlaggedContent) == 0 || result.FlaggedContent[0].Type != enums.ContentTypeToxic {
		t.Fatalf("expected toxic flagged content, got %+v", result.FlaggedContent)
	}
	if count, _ := store.Get(context.Background(), "u1"); count != 1 {
		t.Fatalf("expected one violation, got %d", count)
	}
}

func TestRepeatOffenderCleanTextGoesToReview(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	ctx := context.Background()

	var last int64
	for i := 0; i < 4; i++ {
		if _, err := svc.ModerateContent(ctx, content("you are a stupid idiot moron", "uy")); err != nil {
			t.Fatalf("moderate: %v", err)
		}
		count, _ := store.Get(ctx, "uy")
		if count < last {
			t.Fatalf("violation counter decreased: %d -> %d", last, count)
		}
		last = count
	}

	result, err := svc.ModerateContent(ctx, content("Hello everyone, how are you today?", "uy"))
	if err != nil {
		t.Fatalf("moderate: %v", err)
	}
	found := false
	for _, f := range result.RiskFactors {
		if f == enums.RiskFactorRepeatOffender {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected repeat_offender risk factor, got %v", result.RiskFactors)
	}
	if result.Decision != enums.DecisionReview || !result.ReviewRequired {
		t.Fatalf("expected review with reviewRequired, got %s/%v", result.Decision, result.ReviewRequired)
	}
}

func TestAnalysisFailureFailsOpen(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, failingAnalyzer{}, violations.NewTracker(store, time.Second), Config{}, nil)

	result, err := svc.ModerateContent(context.Background(), content("anything", "u1"))
	if err != nil {
		t.Fatalf("moderate: %v", err)
	}
	if result.Decision != enums.DecisionAllow || result.Confidence != 0 {
		t.Fatalf("expected fail-open allow, got %s/%v", result.Decision, result.Confidence)
	}
	if len(result.Reasons) != 1 || result.Reasons[0] != "analysis_failed" {
		t.Fatalf("expected analysis_failed reason, got %v", result.Reasons)
	}
	if len(result.RiskFactors) != 1 || result.RiskFactors[0] != enums.RiskFactorAnalysisFailed {
		t.Fatalf("expected analysis_failed risk factor, got %v", result.RiskFactors)
	}
}

type failingResults struct{}

func (failingResults) SaveResult(context.Context, model.ModerationResult) error {
	return errors.New("db down")
}

func (failingResults) ListResultsSince(context.Context, time.Time) ([]model.ModerationResult, error) {
	return nil, nil
}

func TestResultSaveFailureLeavesCounterUntouched(t *testing.T) {
	store := memory.NewStore()
	tracker := violations.NewTracker(store, time.Second)
	svc := NewService(failingResults{}, analyzer.New(nil, tracker), tracker, Config{}, nil)

	if _, err := svc.ModerateContent(context.Background(), content("hate hate hate stupid idiot", "u1")); err == nil {
		t.Fatalf("expected error when result cannot be saved")
	}
	count, err := tracker.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get violations: %v", err)
	}
	if count != 0 {
		t.Fatalf("violation count must not move without a saved result, got %d", count)
	}
}

func TestViolationWriteFailureKeepsResult(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, analyzer.New(nil, violations.NewTracker(store, time.Second)), failingCounter{}, Config{}, nil)

	if _, err := svc.ModerateContent(context.Background(), content("hate hate hate stupid idiot", "u1")); err == nil {
		t.Fatalf("expected error when violation cannot be recorded")
	}
	saved, _ := store.ListResultsSince(context.Background(), time.Time{})
	if len(saved) != 1 || saved[0].Decision == enums.DecisionAllow {
		t.Fatalf("expected the non-allow result on record, got %+v", saved)
	}
}

func TestModerateValidation(t *testing.T) {
	svc := newTestService(memory.NewStore())
	cases := []model.ContentItem{
		content("   ", "u1"),
		content("hi", ""),
		{Text: "hi", Metadata: model.ContentMetadata{UserID: "u1"}},
		content(strings.Repeat("a", MaxTextRunes+1), "u1"),
	}
	for _, c := range cases {
		if _, err := svc.ModerateContent(context.Background(), c); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation for %+v, got %v", c.Metadata, err)
		}
	}
}
