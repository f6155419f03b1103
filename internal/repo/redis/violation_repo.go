package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ivankudzin/trustengine/internal/domain/model"
)

const (
	violationPrefix  = "violations:user:"
	violationRankKey = "zset:violations:rank"
)

// incrementScript bumps the per-user counter and mirrors it into the ranking set atomically.
const incrementScript = `
local count = redis.call("INCR", KEYS[1])
redis.call("ZADD", KEYS[2], count, ARGV[1])
return count
`

type ViolationRepo struct {
	client *goredis.Client
	script *goredis.Script
}

func NewViolationRepo(client *goredis.Client) *ViolationRepo {
	return &ViolationRepo{
		client: client,
		script: goredis.NewScript(incrementScript),
	}
}

func (r *ViolationRepo) Increment(ctx context.Context, userID string) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("invalid user id")
	}

	count, err := r.script.Run(ctx, r.client, []string{violationKey(userID), violationRankKey}, userID).Int64()
	if err != nil {
		return 0, fmt.Errorf("eval violation increment: %w", err)
	}
	return count, nil
}

func (r *ViolationRepo) Get(ctx context.Context, userID string) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}

	value, err := r.client.Get(ctx, violationKey(userID)).Result()
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get violation count: %w", err)
	}
	count, err := parseInt64(value)
	if err != nil {
		return 0, fmt.Errorf("parse violation count: %w", err)
	}
	return count, nil
}

func (r *ViolationRepo) TopOffenders(ctx context.Context, minExclusive int64, limit int) ([]model.ViolationCount, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if limit <= 0 {
		limit = 10
	}

	pairs, err := r.client.ZRevRangeByScoreWithScores(ctx, violationRankKey, &goredis.ZRangeBy{
		Max:    "+inf",
		Min:    "(" + strconv.FormatInt(minExclusive, 10),
		Offset: 0,
		Count:  int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read violation ranking: %w", err)
	}

	items := make([]model.ViolationCount, 0, len(pairs))
	for _, pair := range pairs {
		member, ok := pair.Member.(string)
		if !ok {
			member = fmt.Sprint(pair.Member)
		}
		items = append(items, model.ViolationCount{
			UserID: member,
			Count:  int64(pair.Score),
		})
	}
	return items, nil
}

func violationKey(userID string) string {
	return violationPrefix + userID
}

func parseInt64(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}
