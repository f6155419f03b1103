package wiring

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/trustengine/internal/config"
	"github.com/ivankudzin/trustengine/internal/domain/model"
	"github.com/ivankudzin/trustengine/internal/repo/memory"
	pgrepo "github.com/ivankudzin/trustengine/internal/repo/postgres"
	redrepo "github.com/ivankudzin/trustengine/internal/repo/redis"
)

type ResultStore interface {
	SaveResult(ctx context.Context, result model.ModerationResult) error
	ListResultsSince(ctx context.Context, cutoff time.Time) ([]model.ModerationResult, error)
	DeleteResultsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ReportStore interface {
	CreateReport(ctx context.Context, report model.UserReport) error
	ListPendingReports(ctx context.Context) ([]model.UserReport, error)
	MarkReviewed(ctx context.Context, id, reviewerID, resolution string, at time.Time) (model.UserReport, error)
	ReopenReport(ctx context.Context, id, reviewerID string) (bool, error)
	ListReportsSince(ctx context.Context, cutoff time.Time) ([]model.UserReport, error)
	ListReportsByTarget(ctx context.Context, userID string) ([]model.UserReport, error)
}

type ActionStore interface {
	SaveAction(ctx context.Context, action model.ModerationAction) error
	GetAction(ctx context.Context, id string) (model.ModerationAction, error)
	MarkReversed(ctx context.Context, id string) (model.ModerationAction, error)
	ListActionsSince(ctx context.Context, cutoff time.Time) ([]model.ModerationAction, error)
	ListActionsByTarget(ctx context.Context, userID string) ([]model.ModerationAction, error)
}

type ViolationStore interface {
	Increment(ctx context.Context, userID string) (int64, error)
	Get(ctx context.Context, userID string) (int64, error)
	TopOffenders(ctx context.Context, minExclusive int64, limit int) ([]model.ViolationCount, error)
}

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Stores is the persistence selected by storage.driver and storage.counters.
type Stores struct {
	Results    ResultStore
	Reports    ReportStore
	Actions    ActionStore
	Violations ViolationStore
	Windows    WindowStore
	Checks     map[string]Pinger

	pool  *pgxpool.Pool
	redis *goredis.Client
}

// Source joins the record stores into the read side used by the dashboard.
type Source struct {
	ResultStore
	ReportStore
	ActionStore
}

func (s *Stores) Source() Source {
	return Source{ResultStore: s.Results, ReportStore: s.Reports, ActionStore: s.Actions}
}

func OpenStores(ctx context.Context, cfg config.Config, log *zap.Logger) (*Stores, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.Storage.Driver == config.StorageMemory {
		store := memory.NewStore()
		log.Warn("using in-memory storage; data is lost on restart")
		return &Stores{
			Results:    store,
			Reports:    store,
			Actions:    store,
			Violations: store,
			Windows:    store,
			Checks:     map[string]Pinger{"memory": store},
		}, nil
	}

	if cfg.Storage.Migrate {
		if err := pgrepo.Migrate(ctx, cfg.Postgres.DSN, log); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return nil, err
	}

	stores := &Stores{
		Results: pgrepo.NewResultRepo(pool),
		Reports: pgrepo.NewReportRepo(pool),
		Actions: pgrepo.NewActionRepo(pool),
		Checks:  map[string]Pinger{"postgres": pool},
		pool:    pool,
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		if cfg.Storage.Counters == config.CountersRedis {
			pool.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		log.Warn("redis unavailable, report rate limiting disabled", zap.Error(err))
		_ = redisClient.Close()
		stores.Violations = pgrepo.NewViolationRepo(pool)
		return stores, nil
	}

	stores.redis = redisClient
	stores.Windows = redrepo.NewRateRepo(redisClient)
	stores.Checks["redis"] = redisPinger{client: redisClient}
	if cfg.Storage.Counters == config.CountersRedis {
		stores.Violations = redrepo.NewViolationRepo(redisClient)
	} else {
		stores.Violations = pgrepo.NewViolationRepo(pool)
	}
	return stores, nil
}

func (s *Stores) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
