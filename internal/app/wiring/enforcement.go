package wiring

import (
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ivankudzin/trustengine/internal/config"
	"github.com/ivankudzin/trustengine/internal/infra/httpclient"
	kafkainfra "github.com/ivankudzin/trustengine/internal/infra/kafka"
	"github.com/ivankudzin/trustengine/internal/metrics"
	"github.com/ivankudzin/trustengine/internal/services/enforcement"
)

func NewEnforcementClient(cfg config.EnforcementConfig, log *zap.Logger) *enforcement.Client {
	return enforcement.NewClient(httpclient.New(cfg.RequestTimeout), enforcement.ClientConfig{
		SessionsBaseURL: cfg.SessionsBaseURL,
		MessagesBaseURL: cfg.MessagesBaseURL,
		AuthToken:       cfg.AuthToken,
		MaxElapsedTime:  cfg.MaxElapsed,
		BreakerFailures: cfg.BreakerFailures,
		BreakerTimeout:  cfg.BreakerTimeout,
	}, log)
}

// EnforcementFailureHook counts failed commands by kind.
func EnforcementFailureHook(m *metrics.Metrics) enforcement.FailureHook {
	return func(cmd enforcement.Command, _ error) {
		m.ObserveEnforcementFailure(string(cmd.Kind))
	}
}

// Dispatcher is the action executor's enforcement path for the configured mode.
// Close drains background work and flushes the queue writer.
type Dispatcher struct {
	enforcement.Dispatcher
	async  *enforcement.Async
	writer *kafkago.Writer
}

func NewDispatcher(cfg config.Config, m *metrics.Metrics, log *zap.Logger) (*Dispatcher, error) {
	switch cfg.Enforcement.Mode {
	case config.EnforcementOff:
		log.Warn("enforcement is off; actions are recorded only")
		return &Dispatcher{}, nil
	case config.EnforcementQueue:
		writer, err := kafkainfra.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		return &Dispatcher{Dispatcher: enforcement.NewPublisher(writer), writer: writer}, nil
	case config.EnforcementDirect:
		async := enforcement.NewAsync(NewEnforcementClient(cfg.Enforcement, log), cfg.Enforcement.MaxElapsed+cfg.Enforcement.RequestTimeout, log)
		async.AttachFailureHook(EnforcementFailureHook(m))
		return &Dispatcher{Dispatcher: async, async: async}, nil
	default:
		return nil, fmt.Errorf("unsupported enforcement mode %q", cfg.Enforcement.Mode)
	}
}

// Target is nil when enforcement is off.
func (d *Dispatcher) Target() enforcement.Dispatcher {
	if d == nil || d.Dispatcher == nil {
		return nil
	}
	return d.Dispatcher
}

func (d *Dispatcher) Close() error {
	if d == nil {
		return nil
	}
	if d.async != nil {
		d.async.Wait()
	}
	if d.writer != nil {
		return d.writer.Close()
	}
	return nil
}
