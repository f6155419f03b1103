package model

import (
	"time"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
)

// ModerationAction is an audit record. Only Reversed may change after creation.
type ModerationAction struct {
	ID              string
	Type            enums.ActionType
	TargetUserID    string
	TargetMessageID *string
	ModeratorID     string
	Reason          string
	Duration        *time.Duration
	Timestamp       time.Time
	Reversed        bool
}

func (a ModerationAction) Clone() ModerationAction {
	out := a
	out.TargetMessageID = cloneString(a.TargetMessageID)
	if a.Duration != nil {
		d := *a.Duration
		out.Duration = &d
	}
	return out
}

type ViolationCount struct {
	UserID string `json:"user_id"`
	Count  int64  `json:"count"`
}
