package violations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ivankudzin/trustengine/internal/domain/model"
)

const defaultOpTimeout = 3 * time.Second

var ErrValidation = errors.New("validation error")

// Store must serialize increments per user id.
type Store interface {
	Increment(ctx context.Context, userID string) (int64, error)
	Get(ctx context.Context, userID string) (int64, error)
	TopOffenders(ctx context.Context, minExclusive int64, limit int) ([]model.ViolationCount, error)
}

type Tracker struct {
	store     Store
	opTimeout time.Duration
}

func NewTracker(store Store, opTimeout time.Duration) *Tracker {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Tracker{store: store, opTimeout: opTimeout}
}

func (t *Tracker) Increment(ctx context.Context, userID string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, ErrValidation
	}
	if t.store == nil {
		return 0, fmt.Errorf("violation store is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, t.opTimeout)
	defer cancel()

	count, err := t.store.Increment(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("increment violations: %w", err)
	}
	return count, nil
}

// Get never mutates; unknown users have zero violations.
func (t *Tracker) Get(ctx context.Context, userID string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, nil
	}
	if t.store == nil {
		return 0, fmt.Errorf("violation store is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, t.opTimeout)
	defer cancel()

	count, err := t.store.Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get violations: %w", err)
	}
	if count < 0 {
		count = 0
	}
	return count, nil
}

// RepeatOffenders lists users above minExclusive violations, highest first.
func (t *Tracker) RepeatOffenders(ctx context.Context, minExclusive int64, limit int) ([]model.ViolationCount, error) {
	if t.store == nil {
		return nil, fmt.Errorf("violation store is nil")
	}
	if limit <= 0 {
		limit = 10
	}

	ctx, cancel := context.WithTimeout(ctx, t.opTimeout)
	defer cancel()

	items, err := t.store.TopOffenders(ctx, minExclusive, limit)
	if err != nil {
		return nil, fmt.Errorf("list repeat offenders: %w", err)
	}
	return items, nil
}
