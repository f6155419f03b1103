package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// windowScript counts a hit and returns {count, pttl}. A key left without an
// expiry gets one, so a window can never become permanent.
const windowScript = `
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`

// RateRepo backs fixed report windows with one counter key per window.
type RateRepo struct {
	client *goredis.Client
	script *goredis.Script
}

func NewRateRepo(client *goredis.Client) *RateRepo {
	return &RateRepo{
		client: client,
		script: goredis.NewScript(windowScript),
	}
}

// IncrementWindow returns the hit count in the current window and the time until it resets.
func (r *RateRepo) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if r.client == nil {
		return 0, 0, fmt.Errorf("redis client is nil")
	}
	if key == "" || window < time.Millisecond {
		return 0, 0, fmt.Errorf("invalid rate window %q/%s", key, window)
	}

	values, err := r.script.Run(ctx, r.client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("eval rate window: %w", err)
	}
	if len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected rate window reply %v", values)
	}

	return values[0], time.Duration(values[1]) * time.Millisecond, nil
}
