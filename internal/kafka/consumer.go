package kafka

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// handlerRetryDelay paces re-attempts of a failed handler. The
// consumer holds position on the failed message rather than fetching
// past it, since committing a later offset would implicitly commit
// the unprocessed one.
const handlerRetryDelay = 2 * time.Second

// MessageHandler processes one consumed message. A non-nil error makes
// the consumer retry the same message after a delay; it never advances
// past an unprocessed message.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

// Consumer reads a topic within a consumer group.
type Consumer struct {
	reader *kafkago.Reader
	logger *zap.Logger
}

// NewConsumer creates a consumer for the given group and topic.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, logger: logger}
}

// Consume blocks, fetching messages and handing them to handler until
// the context is cancelled.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("failed to fetch message", zap.Error(err))
			continue
		}

		for {
			handleErr := handler(ctx, msg)
			if handleErr == nil {
				break
			}
			c.logger.Error("message handler failed, retrying",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(handleErr),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(handlerRetryDelay):
			}
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit offset", zap.Error(err))
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
