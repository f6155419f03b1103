package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivankudzin/trustengine/internal/app/wiring"
	"github.com/ivankudzin/trustengine/internal/config"
	"github.com/ivankudzin/trustengine/internal/infra/telegram"
	"github.com/ivankudzin/trustengine/internal/metrics"
	"github.com/ivankudzin/trustengine/internal/services/actions"
	"github.com/ivankudzin/trustengine/internal/services/analyzer"
	authsvc "github.com/ivankudzin/trustengine/internal/services/auth"
	dashboardsvc "github.com/ivankudzin/trustengine/internal/services/dashboard"
	modsvc "github.com/ivankudzin/trustengine/internal/services/moderation"
	"github.com/ivankudzin/trustengine/internal/services/rate"
	reportssvc "github.com/ivankudzin/trustengine/internal/services/reports"
	"github.com/ivankudzin/trustengine/internal/services/violations"
	"github.com/ivankudzin/trustengine/internal/transport/http/handlers"
)

type App struct {
	cfg           config.Config
	logger        *zap.Logger
	server        *http.Server
	metricsServer *http.Server
	stores        *wiring.Stores
	dispatcher    *wiring.Dispatcher
	watcher       *analyzer.Watcher
	httpRouter    http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	stores, err := wiring.OpenStores(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	m := metrics.New()
	tracker := violations.NewTracker(stores.Violations, cfg.Storage.OpTimeout)
	contentAnalyzer, watcher, err := wiring.NewAnalyzer(cfg.Analyzer, tracker, log)
	if err != nil {
		_ = stores.Close()
		return nil, fmt.Errorf("init analyzer: %w", err)
	}

	dispatcher, err := wiring.NewDispatcher(cfg, m, log)
	if err != nil {
		_ = stores.Close()
		return nil, fmt.Errorf("init enforcement: %w", err)
	}

	moderationService := modsvc.NewService(stores.Results, contentAnalyzer, tracker, modsvc.Config{
		OpTimeout: cfg.Storage.OpTimeout,
	}, log)
	moderationService.AttachMetrics(m)

	executor := actions.NewExecutor(stores.Actions, dispatcher.Target(), cfg.Storage.OpTimeout, log)
	executor.AttachMetrics(m)

	reportService := reportssvc.NewService(stores.Reports, tracker, executor, reportssvc.Config{
		OpTimeout: cfg.Storage.OpTimeout,
	}, log)
	reportService.AttachMetrics(m)
	if stores.Windows != nil {
		reportService.AttachRateLimiter(rate.NewLimiter(stores.Windows, "reports",
			rate.Window{Name: "sustained", Size: cfg.Reports.RateWindow, Limit: cfg.Reports.RateLimit},
			rate.Window{Name: "burst", Size: cfg.Reports.BurstWindow, Limit: cfg.Reports.BurstLimit},
		))
	}
	if cfg.Telegram.Token != "" {
		if api, err := telegram.NewBotAPI(cfg.Telegram.Token); err != nil {
			log.Warn("telegram init failed, urgent report alerts disabled", zap.Error(err))
		} else {
			reportService.AttachNotifier(telegram.NewNotifier(api, cfg.Telegram.ModeratorsChatID, cfg.Telegram.AdminPanelBaseURL))
		}
	}

	dashboardService := dashboardsvc.NewService(stores.Source(), tracker, cfg.Storage.OpTimeout)

	checks := make(map[string]handlers.Pinger, len(stores.Checks))
	for name, check := range stores.Checks {
		checks[name] = check
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, cfg.HTTP.RequestTimeout)
	RegisterRoutes(r, Dependencies{
		AuthService:       authsvc.NewService(authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, 0)),
		ModerationService: moderationService,
		ReportService:     reportService,
		ActionExecutor:    executor,
		DashboardService:  dashboardService,
		HealthChecks:      checks,
		Logger:            log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsServer = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadTimeout: cfg.HTTP.ReadTimeout}
	}

	return &App{
		cfg:           cfg,
		logger:        log,
		server:        server,
		metricsServer: metricsServer,
		stores:        stores,
		dispatcher:    dispatcher,
		watcher:       watcher,
		httpRouter:    r,
	}, nil
}

// Run serves until ctx is done or a server fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
		return listen(a.server)
	})
	if a.metricsServer != nil {
		g.Go(func() error {
			a.logger.Info("metrics server started", zap.String("addr", a.cfg.Metrics.Addr))
			return listen(a.metricsServer)
		})
	}
	if a.watcher != nil {
		g.Go(func() error {
			return a.watcher.Run(ctx)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.HTTP.WriteTimeout)
		defer cancel()
		return a.shutdownServers(shutdownCtx)
	})

	return g.Wait()
}

func listen(server *http.Server) error {
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) shutdownServers(ctx context.Context) error {
	var shutdownErr error
	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	return shutdownErr
}

// Close releases background dispatchers and storage after Run returns.
func (a *App) Close() error {
	var closeErr error
	if err := a.dispatcher.Close(); err != nil {
		closeErr = err
	}
	if err := a.stores.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
