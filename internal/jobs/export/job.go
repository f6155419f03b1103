package export

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
)

type DashboardSource interface {
	GetModerationDashboard(ctx context.Context, timeRange enums.TimeRange) (model.DashboardView, error)
}

type Uploader interface {
	PutJSON(ctx context.Context, key string, body []byte) error
}

// Job snapshots the 24h dashboard into object storage.
type Job struct {
	dashboard DashboardSource
	uploader  Uploader
	prefix    string
	timeout   time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func New(dashboard DashboardSource, uploader Uploader, prefix string, logger *zap.Logger) *Job {
	if prefix == "" {
		prefix = "dashboards"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{
		dashboard: dashboard,
		uploader:  uploader,
		prefix:    prefix,
		timeout:   2 * time.Minute,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Key(at time.Time) string {
	return path.Join(j.prefix, at.UTC().Format("2006-01-02"), enums.TimeRange24h.Label+".json")
}

func (j *Job) Run(ctx context.Context) error {
	if j.dashboard == nil || j.uploader == nil {
		return fmt.Errorf("export job dependencies are not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	view, err := j.dashboard.GetModerationDashboard(ctx, enums.TimeRange24h)
	if err != nil {
		return fmt.Errorf("build dashboard snapshot: %w", err)
	}
	body, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal dashboard snapshot: %w", err)
	}

	key := j.Key(j.now())
	if err := j.uploader.PutJSON(ctx, key, body); err != nil {
		return fmt.Errorf("upload dashboard snapshot: %w", err)
	}

	j.logger.Info("dashboard snapshot exported",
		zap.String("key", key),
		zap.Int("total_reports", view.Overview.TotalReports),
		zap.Int("total_actions", view.Overview.TotalActions),
	)
	return nil
}

// Schedule runs the job on the cron spec until ctx is done. Failed runs are logged
// and retried on the next tick.
func (j *Job) Schedule(ctx context.Context, spec string) error {
	scheduler := cron.New(cron.WithLocation(time.UTC))
	if _, err := scheduler.AddFunc(spec, func() {
		if err := j.Run(ctx); err != nil {
			j.logger.Error("dashboard export failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("parse export schedule %q: %w", spec, err)
	}

	scheduler.Start()
	j.logger.Info("dashboard export scheduled", zap.String("schedule", spec))
	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}
