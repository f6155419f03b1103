package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// MinRetention keeps every record the widest dashboard range can ask for.
const MinRetention = 30 * 24 * time.Hour

type ResultPruner interface {
	DeleteResultsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Job prunes moderation results past the retention window. Reports and actions are
// audit records and are never pruned.
type Job struct {
	results   ResultPruner
	retention time.Duration
	timeout   time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func New(results ResultPruner, retention time.Duration, logger *zap.Logger) *Job {
	if retention < MinRetention {
		retention = MinRetention
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		results:   results,
		retention: retention,
		timeout:   5 * time.Minute,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.results == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cutoff := j.now().UTC().Add(-j.retention)
	rows, err := j.results.DeleteResultsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune moderation results: %w", err)
	}
	if rows > 0 {
		j.logger.Info("cleanup moderation results completed",
			zap.Int64("deleted", rows),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}

func (j *Job) Schedule(ctx context.Context, spec string) error {
	scheduler := cron.New(cron.WithLocation(time.UTC))
	if _, err := scheduler.AddFunc(spec, func() {
		if err := j.Run(ctx); err != nil {
			j.logger.Error("moderation result cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("parse cleanup schedule %q: %w", spec, err)
	}

	scheduler.Start()
	j.logger.Info("moderation result cleanup scheduled",
		zap.String("schedule", spec),
		zap.Duration("retention", j.retention),
	)
	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}
