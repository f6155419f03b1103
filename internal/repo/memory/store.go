// Package memory keeps every record set in process memory. It backs tests and
// the memory storage driver; state is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
)

type Store struct {
	mu sync.RWMutex

	results     []model.ModerationResult
	reports     []model.UserReport
	reportIndex map[string]int
	actions     []model.ModerationAction
	actionIndex map[string]int
	violations  map[string]int64
	windows     map[string]window

	now func() time.Time
}

type window struct {
	count     int64
	expiresAt time.Time
}

func NewStore() *Store {
	return &Store{
		reportIndex: make(map[string]int),
		actionIndex: make(map[string]int),
		violations:  make(map[string]int64),
		windows:     make(map[string]window),
		now:         time.Now,
	}
}

func (s *Store) Increment(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.violations[userID]++
	return s.violations[userID], nil
}

func (s *Store) Get(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.violations[userID], nil
}

func (s *Store) TopOffenders(_ context.Context, minExclusive int64, limit int) ([]model.ViolationCount, error) {
	s.mu.RLock()
	items := make([]model.ViolationCount, 0)
	for userID, count := range s.violations {
		if count > minExclusive {
			items = append(items, model.ViolationCount{UserID: userID, Count: count})
		}
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].UserID < items[j].UserID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// IncrementWindow is a fixed-window counter, used for report rate limiting.
func (s *Store) IncrementWindow(_ context.Context, key string, size time.Duration) (int64, time.Duration, error) {
	if key == "" || size <= 0 {
		return 0, 0, fmt.Errorf("invalid rate window payload")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.expiresAt) {
		w = window{expiresAt: now.Add(size)}
	}
	w.count++
	s.windows[key] = w
	return w.count, w.expiresAt.Sub(now), nil
}

func (s *Store) SaveResult(_ context.Context, result model.ModerationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, cloneResult(result))
	return nil
}

func (s *Store) ListResultsSince(_ context.Context, cutoff time.Time) ([]model.ModerationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ModerationResult, 0)
	for _, r := range s.results {
		if r.Timestamp.After(cutoff) {
			out = append(out, cloneResult(r))
		}
	}
	return out, nil
}

func (s *Store) DeleteResultsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.results[:0]
	for _, r := range s.results {
		if r.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, r)
	}
	deleted := int64(len(s.results) - len(kept))
	clear(s.results[len(kept):])
	s.results = kept
	return deleted, nil
}

func (s *Store) CreateReport(_ context.Context, report model.UserReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reportIndex[report.ID]; exists {
		return fmt.Errorf("report %s already exists", report.ID)
	}
	s.reportIndex[report.ID] = len(s.reports)
	s.reports = append(s.reports, report.Clone())
	return nil
}

func (s *Store) ListPendingReports(_ context.Context) ([]model.UserReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.UserReport, 0)
	for _, r := range s.reports {
		if r.Status == enums.ReportStatusPending {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// MarkReviewed moves a pending report to reviewed. Exactly one concurrent caller wins.
func (s *Store) MarkReviewed(_ context.Context, id, reviewerID, resolution string, at time.Time) (model.UserReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.reportIndex[id]
	if !ok {
		return model.UserReport{}, model.ErrReportNotFound
	}
	report := &s.reports[idx]
	if report.Status != enums.ReportStatusPending {
		return model.UserReport{}, model.ErrReportAlreadyReviewed
	}
	report.Status = enums.ReportStatusReviewed
	report.ReviewedBy = &reviewerID
	report.Resolution = &resolution
	reviewedAt := at
	report.ReviewedAt = &reviewedAt
	return report.Clone(), nil
}

// ReopenReport undoes a review made by reviewerID. It reports whether the
// report went back to pending.
func (s *Store) ReopenReport(_ context.Context, id, reviewerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.reportIndex[id]
	if !ok {
		return false, nil
	}
	report := &s.reports[idx]
	if report.Status != enums.ReportStatusReviewed || report.ReviewedBy == nil || *report.ReviewedBy != reviewerID {
		return false, nil
	}
	report.Status = enums.ReportStatusPending
	report.ReviewedBy = nil
	report.Resolution = nil
	report.ReviewedAt = nil
	return true, nil
}

func (s *Store) ListReportsSince(_ context.Context, cutoff time.Time) ([]model.UserReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.UserReport, 0)
	for _, r := range s.reports {
		if r.Timestamp.After(cutoff) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (s *Store) ListReportsByTarget(_ context.Context, userID string) ([]model.UserReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.UserReport, 0)
	for _, r := range s.reports {
		if r.TargetUserID == userID {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (s *Store) SaveAction(_ context.Context, action model.ModerationAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.actionIndex[action.ID]; exists {
		return fmt.Errorf("action %s already exists", action.ID)
	}
	s.actionIndex[action.ID] = len(s.actions)
	s.actions = append(s.actions, action.Clone())
	return nil
}

func (s *Store) GetAction(_ context.Context, id string) (model.ModerationAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.actionIndex[id]
	if !ok {
		return model.ModerationAction{}, model.ErrActionNotFound
	}
	return s.actions[idx].Clone(), nil
}

func (s *Store) MarkReversed(_ context.Context, id string) (model.ModerationAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.actionIndex[id]
	if !ok {
		return model.ModerationAction{}, model.ErrActionNotFound
	}
	if s.actions[idx].Reversed {
		return model.ModerationAction{}, model.ErrActionAlreadyReversed
	}
	s.actions[idx].Reversed = true
	return s.actions[idx].Clone(), nil
}

func (s *Store) ListActionsSince(_ context.Context, cutoff time.Time) ([]model.ModerationAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ModerationAction, 0)
	for _, a := range s.actions {
		if a.Timestamp.After(cutoff) {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (s *Store) ListActionsByTarget(_ context.Context, userID string) ([]model.ModerationAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ModerationAction, 0)
	for _, a := range s.actions {
		if a.TargetUserID == userID {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func cloneResult(r model.ModerationResult) model.ModerationResult {
	out := r
	out.Reasons = append([]string(nil), r.Reasons...)
	out.RiskFactors = append([]enums.RiskFactor(nil), r.RiskFactors...)
	out.FlaggedContent = make([]model.FlaggedContent, 0, len(r.FlaggedContent))
	for _, fc := range r.FlaggedContent {
		fc.Matches = append([]string(nil), fc.Matches...)
		out.FlaggedContent = append(out.FlaggedContent, fc)
	}
	if r.MessageID != nil {
		id := *r.MessageID
		out.MessageID = &id
	}
	return out
}
