package dto

import "github.com/ivankudzin/trustengine/internal/domain/model"

type TakeActionRequest struct {
	Type            string  `json:"type"`
	TargetUserID    string  `json:"target_user_id"`
	TargetMessageID *string `json:"target_message_id,omitempty"`
	Reason          string  `json:"reason"`
	DurationMS      *int64  `json:"duration_ms,omitempty"`
}

type ActionResponse struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	TargetUserID    string  `json:"target_user_id"`
	TargetMessageID *string `json:"target_message_id,omitempty"`
	ModeratorID     string  `json:"moderator_id"`
	Reason          string  `json:"reason"`
	DurationMS      *int64  `json:"duration_ms,omitempty"`
	Timestamp       int64   `json:"timestamp"`
	Reversed        bool    `json:"reversed"`
}

// ActionOutcomeResponse carries the stored action plus a warning when enforcement failed.
type ActionOutcomeResponse struct {
	Action  ActionResponse `json:"action"`
	Warning string         `json:"warning,omitempty"`
}

func FromAction(a model.ModerationAction) ActionResponse {
	out := ActionResponse{
		ID:              a.ID,
		Type:            string(a.Type),
		TargetUserID:    a.TargetUserID,
		TargetMessageID: a.TargetMessageID,
		ModeratorID:     a.ModeratorID,
		Reason:          a.Reason,
		Timestamp:       a.Timestamp.UnixMilli(),
		Reversed:        a.Reversed,
	}
	if a.Duration != nil {
		ms := a.Duration.Milliseconds()
		out.DurationMS = &ms
	}
	return out
}

func FromActions(in []model.ModerationAction) []ActionResponse {
	out := make([]ActionResponse, 0, len(in))
	for _, a := range in {
		out = append(out, FromAction(a))
	}
	return out
}
