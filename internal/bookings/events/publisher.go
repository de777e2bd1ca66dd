package events

import (
	"context"
	"fmt"

	"servicehub/pkg/kafka"
	"servicehub/pkg/logger"
	"servicehub/pkg/middleware"
	"servicehub/pkg/model"
)

const (
	SchemaVersion = "1"
	Source        = "servicehub.bookings"
)

// Publisher announces booking changes to other services.
type Publisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
	Close() error
}

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Topic() string
	Close() error
}

type KafkaPublisher struct {
	producer producer
	log      *logger.Logger
}

func NewKafkaPublisher(p *kafka.Producer, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: p, log: log}
}

// Publish encodes event as JSON keyed by booking ID, so every event of a
// booking lands on the same partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", event.Type, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event to %s: %w", event.Type, p.producer.Topic(), err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, model.BookingEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
