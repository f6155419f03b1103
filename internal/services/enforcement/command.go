package enforcement

import (
	"context"
	"time"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
)

type Kind string

const (
	KindWarn          Kind = "warn"
	KindMute          Kind = "mute"
	KindKick          Kind = "kick"
	KindBan           Kind = "ban"
	KindDeleteMessage Kind = "delete_message"
	KindEditMessage   Kind = "edit_message"
	KindUnmute        Kind = "unmute"
	KindUnban         Kind = "unban"
)

// Target names the collaborator that applies a command.
type Target string

const (
	TargetSessions Target = "sessions"
	TargetMessages Target = "messages"
)

func (k Kind) Target() Target {
	if k == KindDeleteMessage || k == KindEditMessage {
		return TargetMessages
	}
	return TargetSessions
}

// Command is the wire form of an enforcement request. Timestamps and durations are milliseconds.
type Command struct {
	ActionID        string  `json:"action_id"`
	Kind            Kind    `json:"kind"`
	TargetUserID    string  `json:"target_user_id"`
	TargetMessageID *string `json:"target_message_id,omitempty"`
	ModeratorID     string  `json:"moderator_id"`
	Reason          string  `json:"reason"`
	DurationMS      *int64  `json:"duration_ms,omitempty"`
	IssuedAt        int64   `json:"issued_at"`
}

type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Command) error
}

func CommandFromAction(action model.ModerationAction) Command {
	cmd := Command{
		ActionID:        action.ID,
		Kind:            Kind(action.Type),
		TargetUserID:    action.TargetUserID,
		TargetMessageID: action.TargetMessageID,
		ModeratorID:     action.ModeratorID,
		Reason:          action.Reason,
		IssuedAt:        action.Timestamp.UTC().UnixMilli(),
	}
	if action.Duration != nil {
		ms := action.Duration.Milliseconds()
		cmd.DurationMS = &ms
	}
	return cmd
}

// ReversalFor returns the command undoing action, if the action type has one.
func ReversalFor(action model.ModerationAction, moderatorID string, now time.Time) (Command, bool) {
	var kind Kind
	switch action.Type {
	case enums.ActionTypeMute:
		kind = KindUnmute
	case enums.ActionTypeBan:
		kind = KindUnban
	default:
		return Command{}, false
	}
	return Command{
		ActionID:     action.ID,
		Kind:         kind,
		TargetUserID: action.TargetUserID,
		ModeratorID:  moderatorID,
		Reason:       "reversal of " + string(action.Type),
		IssuedAt:     now.UTC().UnixMilli(),
	}, true
}
