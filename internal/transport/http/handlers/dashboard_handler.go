package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	dashboardsvc "github.com/ivankudzin/trustengine/internal/services/dashboard"
	"github.com/ivankudzin/trustengine/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/trustengine/internal/transport/http/errors"
)

type DashboardHandler struct {
	service *dashboardsvc.Service
}

func NewDashboardHandler(service *dashboardsvc.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "DASHBOARD_SERVICE_UNAVAILABLE", "dashboard service is unavailable")
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("range"))
	if raw == "" {
		raw = enums.TimeRange24h.Label
	}
	timeRange, err := enums.ParseTimeRange(raw)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		return
	}

	view, err := h.service.GetModerationDashboard(r.Context(), timeRange)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to build dashboard")
		return
	}
	httperrors.Write(w, http.StatusOK, view)
}

func (h *DashboardHandler) UserHistory(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "DASHBOARD_SERVICE_UNAVAILABLE", "dashboard service is unavailable")
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "id"))
	if userID == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "user id is required")
		return
	}

	history, err := h.service.GetUserModerationHistory(r.Context(), userID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load user history")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.FromHistory(history))
}
