package rate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Window allows Limit hits per Size. Name keys the counter.
type Window struct {
	Name  string
	Size  time.Duration
	Limit int
}

// Limiter enforces several fixed windows at once. Every window counts each call,
// including calls that end up rejected.
type Limiter struct {
	store   WindowStore
	prefix  string
	windows []Window
}

func NewLimiter(store WindowStore, prefix string, windows ...Window) *Limiter {
	active := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w.Size <= 0 || w.Limit <= 0 {
			continue
		}
		active = append(active, w)
	}
	return &Limiter{store: store, prefix: prefix, windows: active}
}

// Allow reports whether subject is within every window. When it is not, retryAfter
// is the longest remaining time among the exceeded windows.
func (l *Limiter) Allow(ctx context.Context, subject string) (time.Duration, bool, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return 0, false, fmt.Errorf("rate limit subject is required")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	var retryAfter time.Duration
	for _, w := range l.windows {
		count, ttl, err := l.store.IncrementWindow(ctx, l.key(w, subject), w.Size)
		if err != nil {
			return 0, false, err
		}
		if count > int64(w.Limit) {
			retryAfter = maxDuration(retryAfter, ceilSecond(ttl))
		}
	}

	if retryAfter > 0 {
		return retryAfter, false, nil
	}
	return 0, true, nil
}

func (l *Limiter) key(w Window, subject string) string {
	return "rate:" + l.prefix + ":" + w.Name + ":" + subject
}

func ceilSecond(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	if rem := d % time.Second; rem != 0 {
		d += time.Second - rem
	}
	return d
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
