package dto

import (
	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
)

type ModerateRequest struct {
	Text      string  `json:"text"`
	UserID    string  `json:"user_id"`
	RoomID    string  `json:"room_id"`
	MessageID *string `json:"message_id,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

type ModerationResultResponse struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"user_id"`
	RoomID         string                 `json:"room_id"`
	MessageID      *string                `json:"message_id,omitempty"`
	Decision       string                 `json:"decision"`
	Confidence     float64                `json:"confidence"`
	Reasons        []string               `json:"reasons"`
	FlaggedContent []model.FlaggedContent `json:"flagged_content"`
	RiskFactors    []string               `json:"risk_factors"`
	ReviewRequired bool                   `json:"review_required"`
	Timestamp      int64                  `json:"timestamp"`
}

func FromModerationResult(r model.ModerationResult) ModerationResultResponse {
	flagged := r.FlaggedContent
	if flagged == nil {
		flagged = []model.FlaggedContent{}
	}
	return ModerationResultResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		RoomID:         r.RoomID,
		MessageID:      r.MessageID,
		Decision:       string(r.Decision),
		Confidence:     r.Confidence,
		Reasons:        nonNil(r.Reasons),
		FlaggedContent: flagged,
		RiskFactors:    riskFactorStrings(r.RiskFactors),
		ReviewRequired: r.ReviewRequired,
		Timestamp:      r.Timestamp.UnixMilli(),
	}
}

func riskFactorStrings(in []enums.RiskFactor) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		out = append(out, string(f))
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
