package handlers

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	actionssvc "github.com/ivankudzin/trustengine/internal/services/actions"
	authsvc "github.com/ivankudzin/trustengine/internal/services/auth"
	"github.com/ivankudzin/trustengine/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/trustengine/internal/transport/http/errors"
)

// maxDurationMS is the largest millisecond count a time.Duration can hold.
const maxDurationMS = math.MaxInt64 / int64(time.Millisecond)

type ActionsHandler struct {
	executor *actionssvc.Executor
}

func NewActionsHandler(executor *actionssvc.Executor) *ActionsHandler {
	return &ActionsHandler{executor: executor}
}

func (h *ActionsHandler) Take(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.executor == nil {
		writeInternal(w, "ACTIONS_SERVICE_UNAVAILABLE", "actions service is unavailable")
		return
	}

	var req dto.TakeActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	in := actionssvc.Request{
		Type:            enums.ActionType(req.Type),
		TargetUserID:    req.TargetUserID,
		ModeratorID:     identity.Subject,
		Reason:          req.Reason,
		TargetMessageID: req.TargetMessageID,
	}
	if req.DurationMS != nil {
		if *req.DurationMS > maxDurationMS || *req.DurationMS < -maxDurationMS {
			writeBadRequest(w, "VALIDATION_ERROR", "duration_ms is out of range")
			return
		}
		d := time.Duration(*req.DurationMS) * time.Millisecond
		in.Duration = &d
	}

	outcome, err := h.executor.TakeModerationAction(r.Context(), in)
	if err != nil {
		if errors.Is(err, actionssvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", err.Error())
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to take moderation action")
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.ActionOutcomeResponse{
		Action:  dto.FromAction(outcome.Action),
		Warning: warningFor(outcome.EnforcementError),
	})
}

func (h *ActionsHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.executor == nil {
		writeInternal(w, "ACTIONS_SERVICE_UNAVAILABLE", "actions service is unavailable")
		return
	}

	outcome, err := h.executor.ReverseAction(r.Context(), chi.URLParam(r, "id"), identity.Subject)
	if err != nil {
		switch {
		case errors.Is(err, actionssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, actionssvc.ErrActionNotFound):
			writeNotFound(w, "NOT_FOUND", "moderation action not found")
		case errors.Is(err, actionssvc.ErrActionAlreadyReversed):
			writeConflict(w, "CONFLICT", "moderation action is already reversed")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to reverse moderation action")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ActionOutcomeResponse{
		Action:  dto.FromAction(outcome.Action),
		Warning: warningFor(outcome.EnforcementError),
	})
}
