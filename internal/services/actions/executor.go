package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/trustengine/internal/domain/enums"
	"github.com/ivankudzin/trustengine/internal/domain/model"
	"github.com/ivankudzin/trustengine/internal/metrics"
	"github.com/ivankudzin/trustengine/internal/services/enforcement"
)

const defaultOpTimeout = 3 * time.Second

var (
	ErrValidation            = errors.New("validation error")
	ErrActionNotFound        = model.ErrActionNotFound
	ErrActionAlreadyReversed = model.ErrActionAlreadyReversed
)

type Store interface {
	SaveAction(ctx context.Context, action model.ModerationAction) error
	GetAction(ctx context.Context, id string) (model.ModerationAction, error)
	MarkReversed(ctx context.Context, id string) (model.ModerationAction, error)
	ListActionsByTarget(ctx context.Context, userID string) ([]model.ModerationAction, error)
}

type Request struct {
	Type            enums.ActionType
	TargetUserID    string
	ModeratorID     string
	Reason          string
	TargetMessageID *string
	Duration        *time.Duration
}

// Outcome carries the recorded action. EnforcementError is set when a synchronous
// dispatch failed; the action stays recorded either way.
type Outcome struct {
	Action           model.ModerationAction
	EnforcementError error
}

type Executor struct {
	store      Store
	dispatcher enforcement.Dispatcher
	opTimeout  time.Duration
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewExecutor(store Store, dispatcher enforcement.Dispatcher, opTimeout time.Duration, logger *zap.Logger) *Executor {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		store:      store,
		dispatcher: dispatcher,
		opTimeout:  opTimeout,
		logger:     logger,
		now:        time.Now,
	}
}

func (e *Executor) AttachMetrics(m *metrics.Metrics) {
	e.metrics = m
}

// TakeModerationAction writes the audit record and only then dispatches enforcement.
func (e *Executor) TakeModerationAction(ctx context.Context, req Request) (Outcome, error) {
	req.TargetUserID = strings.TrimSpace(req.TargetUserID)
	req.ModeratorID = strings.TrimSpace(req.ModeratorID)
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	if e.store == nil {
		return Outcome{}, fmt.Errorf("action store is nil")
	}

	action := model.ModerationAction{
		ID:              uuid.NewString(),
		Type:            req.Type,
		TargetUserID:    req.TargetUserID,
		TargetMessageID: req.TargetMessageID,
		ModeratorID:     req.ModeratorID,
		Reason:          strings.TrimSpace(req.Reason),
		Duration:        req.Duration,
		Timestamp:       e.now().UTC(),
	}

	saveCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
	err := e.store.SaveAction(saveCtx, action)
	cancel()
	if err != nil {
		return Outcome{}, fmt.Errorf("record moderation action: %w", err)
	}
	e.metrics.ObserveAction(string(action.Type))
	e.logger.Info("moderation action recorded",
		zap.String("action_id", action.ID),
		zap.String("type", string(action.Type)),
		zap.String("target_user_id", action.TargetUserID),
		zap.String("moderator_id", action.ModeratorID),
	)

	out := Outcome{Action: action.Clone()}
	out.EnforcementError = e.dispatch(ctx, enforcement.CommandFromAction(action))
	return out, nil
}

// ReverseAction flags an action as reversed exactly once and dispatches the undo command when one exists.
func (e *Executor) ReverseAction(ctx context.Context, actionID, moderatorID string) (Outcome, error) {
	actionID = strings.TrimSpace(actionID)
	moderatorID = strings.TrimSpace(moderatorID)
	if actionID == "" || moderatorID == "" {
		return Outcome{}, fmt.Errorf("%w: action id and moderator id are required", ErrValidation)
	}
	if e.store == nil {
		return Outcome{}, fmt.Errorf("action store is nil")
	}

	opCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()
	action, err := e.store.MarkReversed(opCtx, actionID)
	if err != nil {
		return Outcome{}, err
	}

	e.logger.Info("moderation action reversed",
		zap.String("action_id", action.ID),
		zap.String("type", string(action.Type)),
		zap.String("moderator_id", moderatorID),
	)

	out := Outcome{Action: action}
	if cmd, ok := enforcement.ReversalFor(action, moderatorID, e.now()); ok {
		out.EnforcementError = e.dispatch(ctx, cmd)
	}
	return out, nil
}

func (e *Executor) ListByTarget(ctx context.Context, userID string) ([]model.ModerationAction, error) {
	if e.store == nil {
		return nil, fmt.Errorf("action store is nil")
	}
	opCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()
	return e.store.ListActionsByTarget(opCtx, userID)
}

// dispatch never fails the caller; the audit record already exists.
func (e *Executor) dispatch(ctx context.Context, cmd enforcement.Command) error {
	if e.dispatcher == nil {
		return nil
	}
	if err := e.dispatcher.Dispatch(ctx, cmd); err != nil {
		e.metrics.ObserveEnforcementFailure(string(cmd.Kind))
		e.logger.Warn("enforcement dispatch failed",
			zap.String("action_id", cmd.ActionID),
			zap.String("kind", string(cmd.Kind)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func validateRequest(req Request) error {
	if t, ok := enums.ParseActionType(string(req.Type)); !ok || t != req.Type {
		return fmt.Errorf("%w: unknown action type %q", ErrValidation, req.Type)
	}
	if req.TargetUserID == "" {
		return fmt.Errorf("%w: target user id is required", ErrValidation)
	}
	if req.ModeratorID == "" {
		return fmt.Errorf("%w: moderator id is required", ErrValidation)
	}
	if req.Type.TargetsMessage() && (req.TargetMessageID == nil || strings.TrimSpace(*req.TargetMessageID) == "") {
		return fmt.Errorf("%w: %s requires a target message id", ErrValidation, req.Type)
	}
	if req.Duration != nil {
		if !req.Type.SupportsDuration() {
			return fmt.Errorf("%w: duration is not allowed for %s", ErrValidation, req.Type)
		}
		if *req.Duration <= 0 {
			return fmt.Errorf("%w: duration must be positive", ErrValidation)
		}
	}
	return nil
}
