package enforcement

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Async runs dispatches in the background so callers never wait on enforcement.
type Async struct {
	next      Dispatcher
	timeout   time.Duration
	logger    *zap.Logger
	onFailure FailureHook
	wg        sync.WaitGroup
}

func NewAsync(next Dispatcher, timeout time.Duration, logger *zap.Logger) *Async {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Async{next: next, timeout: timeout, logger: logger}
}

func (a *Async) AttachFailureHook(hook FailureHook) {
	a.onFailure = hook
}

// Dispatch always returns nil; failures go to the log and the failure hook.
func (a *Async) Dispatch(ctx context.Context, cmd Command) error {
	detached := context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		runCtx, cancel := context.WithTimeout(detached, a.timeout)
		defer cancel()

		if err := a.next.Dispatch(runCtx, cmd); err != nil {
			a.logger.Error("async enforcement failed",
				zap.String("action_id", cmd.ActionID),
				zap.String("kind", string(cmd.Kind)),
				zap.Error(err),
			)
			if a.onFailure != nil {
				a.onFailure(cmd, err)
			}
		}
	}()
	return nil
}

// Wait blocks until in-flight dispatches finish.
func (a *Async) Wait() {
	a.wg.Wait()
}
