package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/ivankudzin/trustengine/internal/repo/redis"
)

func TestLimiterBlocksOnBurstWindow(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	limiter := NewLimiter(redrepo.NewRateRepo(client), "reports",
		Window{Name: "10m", Size: 10 * time.Minute, Limit: 100},
		Window{Name: "10s", Size: 10 * time.Second, Limit: 2},
	)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		retryAfter, allowed, err := limiter.Allow(ctx, "reporter-1")
		if err != nil {
			t.Fatalf("allow #%d: %v", i+1, err)
		}
		if !allowed || retryAfter != 0 {
			t.Fatalf("unexpected result on allow #%d: allowed=%v retry_after=%s", i+1, allowed, retryAfter)
		}
	}

	retryAfter, allowed, err := limiter.Allow(ctx, "reporter-1")
	if err != nil {
		t.Fatalf("allow #3: %v", err)
	}
	if allowed {
		t.Fatalf("expected limiter block on third report in 10s window")
	}
	if retryAfter <= 0 || retryAfter > 10*time.Second {
		t.Fatalf("unexpected retry_after: %s", retryAfter)
	}

	if _, allowed, _ := limiter.Allow(ctx, "reporter-2"); !allowed {
		t.Fatalf("expected other reporter to be allowed")
	}

	mr.FastForward(11 * time.Second)

	retryAfter, allowed, err = limiter.Allow(ctx, "reporter-1")
	if err != nil {
		t.Fatalf("allow after 10s window: %v", err)
	}
	if !allowed || retryAfter != 0 {
		t.Fatalf("expected limiter to reopen after window, allowed=%v retry_after=%s", allowed, retryAfter)
	}
}

func TestLimiterSkipsDisabledWindows(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	limiter := NewLimiter(redrepo.NewRateRepo(client), "reports", Window{Name: "off", Size: time.Minute, Limit: 0})
	for i := 0; i < 5; i++ {
		if _, allowed, err := limiter.Allow(context.Background(), "r"); err != nil || !allowed {
			t.Fatalf("allow #%d: allowed=%v err=%v", i+1, allowed, err)
		}
	}
}

func TestLimiterRequiresSubject(t *testing.T) {
	limiter := NewLimiter(nil, "reports", Window{Name: "w", Size: time.Minute, Limit: 1})
	if _, _, err := limiter.Allow(context.Background(), " "); err == nil {
		t.Fatalf("expected error for blank subject")
	}
}

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return mr, client
}
