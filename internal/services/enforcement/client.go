package enforcement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var ErrNoTarget = errors.New("enforcement target is not configured")

type ClientConfig struct {
	SessionsBaseURL string
	MessagesBaseURL string
	AuthToken       string
	MaxElapsedTime  time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Client applies commands against the session and message services over HTTP.
// Each target has its own circuit breaker; transient failures are retried with backoff.
type Client struct {
	httpClient *http.Client
	cfg        ClientConfig
	breakers   map[Target]*gobreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewClient(httpClient *http.Client, cfg ClientConfig, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxElapsedTime <= 0 {
		cfg.MaxElapsedTime = 30 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	c := &Client{
		httpClient: httpClient,
		cfg:        cfg,
		breakers:   make(map[Target]*gobreaker.CircuitBreaker, 2),
		logger:     logger,
	}
	for _, target := range []Target{TargetSessions, TargetMessages} {
		c.breakers[target] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "enforcement-" + string(target),
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.BreakerFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("enforcement breaker state change",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}
	return c
}

// Dispatch lets Client serve as a synchronous Dispatcher.
func (c *Client) Dispatch(ctx context.Context, cmd Command) error {
	return c.Apply(ctx, cmd)
}

func (c *Client) Apply(ctx context.Context, cmd Command) error {
	endpoint, err := c.endpoint(cmd)
	if err != nil {
		return err
	}
	body, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal enforcement command: %w", err)
	}

	breaker := c.breakers[cmd.Kind.Target()]
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = c.cfg.MaxElapsedTime

	operation := func() error {
		_, err := breaker.Execute(func() (interface{}, error) {
			return nil, c.post(ctx, endpoint, body)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return fmt.Errorf("apply %s for action %s: %w", cmd.Kind, cmd.ActionID, err)
	}
	return nil
}

func (c *Client) endpoint(cmd Command) (string, error) {
	switch cmd.Kind.Target() {
	case TargetMessages:
		if strings.TrimSpace(c.cfg.MessagesBaseURL) == "" {
			return "", ErrNoTarget
		}
		if cmd.TargetMessageID == nil || strings.TrimSpace(*cmd.TargetMessageID) == "" {
			return "", backoff.Permanent(fmt.Errorf("message id is required for %s", cmd.Kind))
		}
		op := "delete"
		if cmd.Kind == KindEditMessage {
			op = "edit"
		}
		return strings.TrimRight(c.cfg.MessagesBaseURL, "/") + "/v1/messages/" + url.PathEscape(*cmd.TargetMessageID) + "/" + op, nil
	default:
		if strings.TrimSpace(c.cfg.SessionsBaseURL) == "" {
			return "", ErrNoTarget
		}
		return strings.TrimRight(c.cfg.SessionsBaseURL, "/") + "/v1/users/" + url.PathEscape(cmd.TargetUserID) + "/" + string(cmd.Kind), nil
	}
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build enforcement request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send enforcement request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return backoff.Permanent(fmt.Errorf("enforcement rejected: status %d", resp.StatusCode))
	default:
		return fmt.Errorf("enforcement failed: status %d", resp.StatusCode)
	}
}
