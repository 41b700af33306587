package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/petmily/service-reservation/internal/events/schema"
	"github.com/petmily/service-reservation/internal/platform/domain"
	"github.com/petmily/service-reservation/internal/platform/kafka"
)

// ReservationLinker attaches journals and reviews to reservations.
// *application.ReservationService satisfies it.
type ReservationLinker interface {
	AttachJournal(ctx context.Context, reservationID, journalID uuid.UUID) error
	AttachReview(ctx context.Context, reservationID, reviewID uuid.UUID) error
}

// JournalReviewConsumer listens to journal and review events and links them
// to their reservations.
type JournalReviewConsumer struct {
	consumer *kafka.Consumer
	linker   ReservationLinker
	logger   *zap.Logger
}

// NewJournalReviewConsumer creates a new JournalReviewConsumer.
func NewJournalReviewConsumer(
	brokers []string,
	groupID string,
	linker ReservationLinker,
	logger *zap.Logger,
) *JournalReviewConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, []string{schema.TopicJournalEvents, schema.TopicReviewEvents}, logger)
	return &JournalReviewConsumer{
		consumer: consumer,
		linker:   linker,
		logger:   logger,
	}
}

// Start begins consuming. This blocks until the context is cancelled.
func (c *JournalReviewConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *JournalReviewConsumer) Close() error {
	return c.consumer.Close()
}

func (c *JournalReviewConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event",
			zap.String("topic", msg.Topic),
			zap.Error(err),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case schema.JournalCreated:
		var evt schema.JournalCreatedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse JournalCreatedEvent data", zap.Error(err))
			return nil
		}
		return c.link(ctx, "journal_id", evt.ReservationID, evt.JournalID, c.linker.AttachJournal)

	case schema.ReviewCreated:
		var evt schema.ReviewCreatedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse ReviewCreatedEvent data", zap.Error(err))
			return nil
		}
		return c.link(ctx, "review_id", evt.ReservationID, evt.ReviewID, c.linker.AttachReview)

	default:
		c.logger.Debug("ignoring unhandled event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

// link applies attach and decides whether a failure is worth retrying.
// Domain rejections are permanent; anything else is retried.
func (c *JournalReviewConsumer) link(
	ctx context.Context,
	field string,
	reservationID, linkedID uuid.UUID,
	attach func(ctx context.Context, reservationID, linkedID uuid.UUID) error,
) error {
	err := attach(ctx, reservationID, linkedID)
	if err == nil {
		return nil
	}

	var domainErr *domain.Error
	if errors.As(err, &domainErr) && domainErr.Kind != domain.KindConflict {
		c.logger.Warn("rejected reservation link",
			zap.String("reservation_id", reservationID.String()),
			zap.String(field, linkedID.String()),
			zap.Error(err),
		)
		return nil
	}

	c.logger.Error("failed to link reservation",
		zap.String("reservation_id", reservationID.String()),
		zap.String(field, linkedID.String()),
		zap.Error(err),
	)
	return err
}
