package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
)

func TestConcurrentIncrementsAreNotLost(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Increment(ctx, "u1"); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	count, err := store.Get(ctx, "u1")
	if err != nil || count != 100 {
		t.Fatalf("expected 100 violations, got %d (err=%v)", count, err)
	}
	if count, _ := store.Get(ctx, "unknown"); count != 0 {
		t.Fatalf("unknown user should have 0 violations, got %d", count)
	}
}

func TestMarkReviewedHasSingleWinner(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	if err := store.CreateReport(ctx, model.UserReport{ID: "r1", Status: enums.ReportStatusPending}); err != nil {
		t.Fatalf("create: %v", err)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		losses int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.MarkReviewed(ctx, "r1", "mod", "done", time.Now())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, model.ErrReportAlreadyReviewed):
				losses++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || losses != 19 {
		t.Fatalf("expected exactly one winner, got wins=%d losses=%d", wins, losses)
	}
	if _, err := store.MarkReviewed(ctx, "missing", "mod", "x", time.Now()); !errors.Is(err, model.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
}

func TestPendingReportsKeepInsertionOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_ = store.CreateReport(ctx, model.UserReport{ID: id, Status: enums.ReportStatusPending})
	}
	_, _ = store.MarkReviewed(ctx, "b", "mod", "ok", time.Now())

	pending, _ := store.ListPendingReports(ctx)
	if len(pending) != 2 || pending[0].ID != "a" || pending[1].ID != "c" {
		t.Fatalf("unexpected pending reports: %+v", pending)
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	_ = store.SaveResult(ctx, model.ModerationResult{ID: "x", Reasons: []string{"spam content"}, Timestamp: time.Now()})

	got, _ := store.ListResultsSince(ctx, time.Time{})
	got[0].Reasons[0] = "mutated"

	again, _ := store.ListResultsSince(ctx, time.Time{})
	if again[0].Reasons[0] != "spam content" {
		t.Fatalf("store leaked internal slice")
	}
}

func TestMarkReversedOnce(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	_ = store.SaveAction(ctx, model.ModerationAction{ID: "a1", Type: enums.ActionTypeBan})

	if _, err := store.MarkReversed(ctx, "a1"); err != nil {
		t.Fatalf("first reverse: %v", err)
	}
	if _, err := store.MarkReversed(ctx, "a1"); !errors.Is(err, model.ErrActionAlreadyReversed) {
		t.Fatalf("expected ErrActionAlreadyReversed, got %v", err)
	}
}

func TestIncrementWindowResets(t *testing.T) {
	store := NewStore()
	now := time.Unix(1000, 0)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		count, ttl, err := store.IncrementWindow(ctx, "k", time.Minute)
		if err != nil || count != int64(i) || ttl != time.Minute {
			t.Fatalf("unexpected window state count=%d ttl=%s err=%v", count, ttl, err)
		}
	}
	now = now.Add(time.Minute)
	if count, _, _ := store.IncrementWindow(ctx, "k", time.Minute); count != 1 {
		t.Fatalf("expected window reset, got %d", count)
	}
}
