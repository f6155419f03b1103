package enforcement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher enqueues commands on a Kafka topic keyed by target user.
type Publisher struct {
	writer MessageWriter
}

func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

func (p *Publisher) Dispatch(ctx context.Context, cmd Command) error {
	if p.writer == nil {
		return fmt.Errorf("kafka writer is nil")
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal enforcement command: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(cmd.TargetUserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(cmd.Kind)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish enforcement command: %w", err)
	}
	return nil
}

type Applier interface {
	Apply(ctx context.Context, cmd Command) error
}

type FailureHook func(cmd Command, err error)

// Consumer drains the enforcement topic and applies each command.
// Offsets are committed after the attempt whether or not it succeeded;
// failed commands are reported through the failure hook.
type Consumer struct {
	reader    MessageReader
	applier   Applier
	logger    *zap.Logger
	onFailure FailureHook
}

func NewConsumer(reader MessageReader, applier Applier, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{reader: reader, applier: applier, logger: logger}
}

func (c *Consumer) AttachFailureHook(hook FailureHook) {
	c.onFailure = hook
}

func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetch enforcement message: %w", err)
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit enforcement message: %w", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	var cmd Command
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		c.logger.Error("drop malformed enforcement message",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return
	}

	if err := c.applier.Apply(ctx, cmd); err != nil {
		c.logger.Error("enforcement failed",
			zap.String("action_id", cmd.ActionID),
			zap.String("kind", string(cmd.Kind)),
			zap.Error(err),
		)
		if c.onFailure != nil {
			c.onFailure(cmd, err)
		}
		return
	}
	c.logger.Info("enforcement applied",
		zap.String("action_id", cmd.ActionID),
		zap.String("kind", string(cmd.Kind)),
	)
}
