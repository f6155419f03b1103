package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	authsvc "github.com/ivankudzin/trustengine/internal/services/auth"
	reportssvc "github.com/ivankudzin/trustengine/internal/services/reports"
	"github.com/ivankudzin/trustengine/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/trustengine/internal/transport/http/errors"
)

type ReportsHandler struct {
	service *reportssvc.Service
}

func NewReportsHandler(service *reportssvc.Service) *ReportsHandler {
	return &ReportsHandler{service: service}
}

func (h *ReportsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "REPORTS_SERVICE_UNAVAILABLE", "reports service is unavailable")
		return
	}

	var req dto.SubmitReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	report, err := h.service.SubmitReport(r.Context(), reportssvc.SubmitInput{
		ReporterID:      req.ReporterID,
		TargetUserID:    req.TargetUserID,
		TargetMessageID: req.TargetMessageID,
		Reason:          req.Reason,
		Description:     req.Description,
		Evidence:        req.Evidence,
	})
	if err != nil {
		var rateErr *reportssvc.RateLimitError
		switch {
		case errors.As(err, &rateErr):
			httperrors.WriteRateLimited(w, rateErr.RetryAfter, "too many reports, try again later")
		case errors.Is(err, reportssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to submit report")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.FromReport(report))
}

func (h *ReportsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "REPORTS_SERVICE_UNAVAILABLE", "reports service is unavailable")
		return
	}

	var filter *enums.Priority
	if raw := strings.TrimSpace(r.URL.Query().Get("priority")); raw != "" {
		priority, ok := enums.ParsePriority(raw)
		if !ok {
			writeBadRequest(w, "VALIDATION_ERROR", "unknown priority")
			return
		}
		filter = &priority
	}

	pending, err := h.service.GetPendingReports(r.Context(), filter)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load pending reports")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.PendingReportsResponse{Items: dto.FromReports(pending)})
}

func (h *ReportsHandler) Review(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "REPORTS_SERVICE_UNAVAILABLE", "reports service is unavailable")
		return
	}

	var req dto.ReviewReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.service.ReviewReport(r.Context(), reportssvc.ReviewInput{
		ReportID:   chi.URLParam(r, "id"),
		ReviewerID: identity.Subject,
		Decision:   req.Decision,
		Resolution: req.Resolution,
	})
	if err != nil {
		switch {
		case errors.Is(err, reportssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, reportssvc.ErrReportAlreadyReviewed):
			writeConflict(w, "CONFLICT", "report is already reviewed")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to review report")
		}
		return
	}
	if result == nil {
		writeNotFound(w, "NOT_FOUND", "report not found")
		return
	}

	resp := dto.ReviewReportResponse{Report: dto.FromReport(result.Report)}
	if result.Action != nil {
		action := dto.FromAction(result.Action.Action)
		resp.Action = &action
		resp.Warning = warningFor(result.Action.EnforcementError)
	}
	httperrors.Write(w, http.StatusOK, resp)
}
