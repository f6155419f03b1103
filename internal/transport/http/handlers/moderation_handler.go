package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ivankudzin/trustengine/internal/domain/model"
	modsvc "github.com/ivankudzin/trustengine/internal/services/moderation"
	"github.com/ivankudzin/trustengine/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/trustengine/internal/transport/http/errors"
)

type ModerationHandler struct {
	service *modsvc.Service
}

func NewModerationHandler(service *modsvc.Service) *ModerationHandler {
	return &ModerationHandler{service: service}
}

func (h *ModerationHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	var req dto.ModerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	sentAt := time.Now().UTC()
	if req.Timestamp > 0 {
		sentAt = time.UnixMilli(req.Timestamp).UTC()
	}
	result, err := h.service.ModerateContent(r.Context(), model.ContentItem{
		Text: req.Text,
		Metadata: model.ContentMetadata{
			UserID:    req.UserID,
			RoomID:    req.RoomID,
			MessageID: req.MessageID,
			Timestamp: sentAt,
		},
	})
	if err != nil {
		if errors.Is(err, modsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", err.Error())
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to moderate content")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.FromModerationResult(result))
}
