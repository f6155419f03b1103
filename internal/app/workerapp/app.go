package workerapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivankudzin/trustengine/internal/app/wiring"
	"github.com/ivankudzin/trustengine/internal/config"
	kafkainfra "github.com/ivankudzin/trustengine/internal/infra/kafka"
	"github.com/ivankudzin/trustengine/internal/jobs/cleanup"
	"github.com/ivankudzin/trustengine/internal/jobs/export"
	"github.com/ivankudzin/trustengine/internal/metrics"
	dashboardsvc "github.com/ivankudzin/trustengine/internal/services/dashboard"
	"github.com/ivankudzin/trustengine/internal/services/enforcement"
	"github.com/ivankudzin/trustengine/internal/services/violations"
)

// App consumes queued enforcement commands and runs scheduled jobs.
type App struct {
	cfg           config.Config
	logger        *zap.Logger
	stores        *wiring.Stores
	reader        *kafkago.Reader
	consumer      *enforcement.Consumer
	exportJob     *export.Job
	cleanupJob    *cleanup.Job
	metricsServer *http.Server
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	m := metrics.New()
	app := &App{cfg: cfg, logger: log}

	if cfg.Enforcement.Mode == config.EnforcementQueue {
		reader, err := kafkainfra.NewReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
		if err != nil {
			return nil, fmt.Errorf("init enforcement consumer: %w", err)
		}
		consumer := enforcement.NewConsumer(reader, wiring.NewEnforcementClient(cfg.Enforcement, log), log)
		consumer.AttachFailureHook(wiring.EnforcementFailureHook(m))
		app.reader = reader
		app.consumer = consumer
	} else {
		log.Info("enforcement queue disabled", zap.String("mode", cfg.Enforcement.Mode))
	}

	if cfg.Export.Enabled || cfg.Retention.Enabled {
		if cfg.Storage.Driver == config.StorageMemory {
			log.Warn("scheduled jobs run against this process's in-memory store only")
		}
		stores, err := wiring.OpenStores(ctx, cfg, log)
		if err != nil {
			app.closeReader()
			return nil, fmt.Errorf("open storage: %w", err)
		}
		app.stores = stores

		if cfg.Export.Enabled {
			tracker := violations.NewTracker(stores.Violations, cfg.Storage.OpTimeout)
			dashboard := dashboardsvc.NewService(stores.Source(), tracker, cfg.Storage.OpTimeout)
			job, err := wiring.NewExportJob(ctx, cfg, dashboard, log)
			if err != nil {
				_ = app.Close()
				return nil, fmt.Errorf("init dashboard export: %w", err)
			}
			app.exportJob = job
		}
		if cfg.Retention.Enabled {
			app.cleanupJob = cleanup.New(stores.Results, cfg.Retention.Results, log)
		}
	}

	if app.consumer == nil && app.exportJob == nil && app.cleanupJob == nil {
		app.closeReader()
		return nil, fmt.Errorf("worker has nothing to run: enable enforcement queue mode, export or retention")
	}

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		app.metricsServer = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadTimeout: cfg.HTTP.ReadTimeout}
	}

	return app, nil
}

// Run blocks until ctx is done or a component fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if a.consumer != nil {
		g.Go(func() error {
			a.logger.Info("enforcement consumer started", zap.String("topic", a.cfg.Kafka.Topic))
			return a.consumer.Run(ctx)
		})
	}
	if a.exportJob != nil {
		g.Go(func() error {
			return a.exportJob.Schedule(ctx, a.cfg.Export.Schedule)
		})
	}
	if a.cleanupJob != nil {
		g.Go(func() error {
			return a.cleanupJob.Schedule(ctx, a.cfg.Retention.Schedule)
		})
	}
	if a.metricsServer != nil {
		g.Go(func() error {
			err := a.metricsServer.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
		g.Go(func() error {
			<-ctx.Done()
			return a.metricsServer.Close()
		})
	}

	return g.Wait()
}

func (a *App) Close() error {
	var closeErr error
	if a.reader != nil {
		closeErr = a.reader.Close()
	}
	if a.stores != nil {
		if err := a.stores.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
	}
	return closeErr
}

func (a *App) closeReader() {
	if a.reader != nil {
		_ = a.reader.Close()
	}
}
