package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/sitso-en/photovault/internal/kafka"
)

// OwnerPurger removes every entity of one kind owned by a user.
// Implemented by the photo and album application services.
type OwnerPurger interface {
	PurgeOwner(ctx context.Context, ownerID uuid.UUID) error
}

// UserEventConsumer reacts to account lifecycle events from the user
// topic. On user.deleted it purges the owner's photos, blobs and albums
// so the store holds no content for accounts that no longer exist.
type UserEventConsumer struct {
	consumer *kafka.Consumer
	purgers  []OwnerPurger
	logger   *zap.Logger
}

// NewUserEventConsumer creates a consumer for the user events topic.
// Purgers run in order; photos go first so album links are already
// gone when their albums are removed.
func NewUserEventConsumer(brokers []string, groupID string, logger *zap.Logger, purgers ...OwnerPurger) *UserEventConsumer {
	return &UserEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicUserEvents, logger),
		purgers:  purgers,
		logger:   logger,
	}
}

// Start blocks consuming until the context is cancelled.
func (c *UserEventConsumer) Start(ctx context.Context) error {
	c.logger.Info("user event consumer started", zap.String("topic", TopicUserEvents))
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying reader.
func (c *UserEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *UserEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	event, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		// Malformed envelopes are dropped, not retried.
		c.logger.Warn("skipping malformed event", zap.Error(err))
		return nil
	}

	switch event.Type {
	case UserDeleted:
		var payload UserDeletedEvent
		if err := event.ParseData(&payload); err != nil {
			c.logger.Warn("skipping malformed user.deleted payload", zap.Error(err))
			return nil
		}
		for _, p := range c.purgers {
			if err := p.PurgeOwner(ctx, payload.UserID); err != nil {
				return err
			}
		}
		c.logger.Info("purged content for deleted user", zap.String("user_id", payload.UserID.String()))
		return nil
	default:
		// Other user events carry nothing for this service.
		return nil
	}
}
