// Package kafka carries term search invocations over segmentio/kafka-go. The
// consumer hands raw event payloads to a MessageHandler and commits only what
// the handler accepted; the producer publishes JSON-encoded results.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/resilience"
)

// MessageHandler is a callback invoked for each Kafka message.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads messages from a Kafka topic and dispatches them to a
// MessageHandler.
type Consumer struct {
	reader  messageReader
	logger  *slog.Logger
	handler MessageHandler
	retry   resilience.RetryConfig
}

// NewConsumer creates a Consumer for the given topic and handler.
func NewConsumer(cfg config.KafkaConfig, topic string, maxBytes int, handler MessageHandler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    maxBytes,
		StartOffset: kafka.FirstOffset,
	})
	retry := resilience.RetryConfig{
		MaxAttempts:  cfg.HandlerRetries,
		InitialDelay: cfg.HandlerRetryDelay,
		MaxDelay:     30 * time.Second,
	}
	return newConsumer(r, topic, retry, handler)
}

func newConsumer(r messageReader, topic string, retry resilience.RetryConfig, handler MessageHandler) *Consumer {
	return &Consumer{
		reader:  r,
		logger:  slog.Default().With("component", "kafka-consumer", "topic", topic),
		handler: handler,
		retry:   retry,
	}
}

// Start enters the consume loop, fetching and processing messages until ctx
// is cancelled. A failing handler is retried in place. Kafka commits the
// highest offset of a partition, so a message that still fails cannot be
// skipped: Start returns without committing it and the message is
// redelivered to the next consumer of the group.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer c.reader.Close()
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopping", "reason", ctx.Err())
			return nil
		default:
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to fetch message", "error", err)
			continue
		}
		c.logger.Debug("message received",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"value_size", len(msg.Value),
		)
		err = resilience.Retry(ctx, "kafka-handler", c.retry, func() error {
			return c.handler(ctx, msg.Key, msg.Value)
		})
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping mid-message", "partition", msg.Partition, "offset", msg.Offset)
				return nil
			}
			c.logger.Error("failed to process message, stopping without commit",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
			return fmt.Errorf("processing %s[%d]@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}
