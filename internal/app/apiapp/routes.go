package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	actionssvc "github.com/ivankudzin/trustengine/internal/services/actions"
	authsvc "github.com/ivankudzin/trustengine/internal/services/auth"
	dashboardsvc "github.com/ivankudzin/trustengine/internal/services/dashboard"
	modsvc "github.com/ivankudzin/trustengine/internal/services/moderation"
	reportssvc "github.com/ivankudzin/trustengine/internal/services/reports"
	"github.com/ivankudzin/trustengine/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService       *authsvc.Service
	ModerationService *modsvc.Service
	ReportService     *reportssvc.Service
	ActionExecutor    *actionssvc.Executor
	DashboardService  *dashboardsvc.Service
	HealthChecks      map[string]handlers.Pinger
	Logger            *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)
	moderationHandler := handlers.NewModerationHandler(deps.ModerationService)
	reportsHandler := handlers.NewReportsHandler(deps.ReportService)
	actionsHandler := handlers.NewActionsHandler(deps.ActionExecutor)
	dashboardHandler := handlers.NewDashboardHandler(deps.DashboardService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	moderatorRoleMW := RequireRole(authsvc.RoleModerator, authsvc.RoleAdmin)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/moderate", moderationHandler.Moderate)
		r.Post("/reports", reportsHandler.Submit)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMW, moderatorRoleMW)
			r.Get("/reports/pending", reportsHandler.Pending)
			r.Post("/reports/{id}/review", reportsHandler.Review)
			r.Post("/actions", actionsHandler.Take)
			r.Post("/actions/{id}/reverse", actionsHandler.Reverse)
			r.Get("/dashboard", dashboardHandler.Dashboard)
			r.Get("/users/{id}/history", dashboardHandler.UserHistory)
		})
	})
}
