package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"servicehub/pkg/kafka"
	"servicehub/pkg/logger"
	"servicehub/pkg/middleware"
	"servicehub/pkg/model"
)

type fakeProducer struct {
	published []kafka.Message
	err       error
	closed    bool
}

func (f *fakeProducer) Publish(_ context.Context, msg kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeProducer) Topic() string { return "servicehub.booking-events" }

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	fp := &fakeProducer{}
	pub := &KafkaPublisher{producer: fp, log: logger.Nop()}

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-123")
	event := model.BookingEvent{
		Type:       model.EventBookingStatusChanged,
		BookingID:  "b-1",
		CustomerID: "alice",
		ProviderID: "bob",
		ActorID:    "bob",
		Status:     model.StatusConfirmed,
		PrevStatus: model.StatusPending,
		OccurredAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	if err := pub.Publish(ctx, event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(fp.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fp.published))
	}

	msg := fp.published[0]
	if msg.Key != "b-1" {
		t.Errorf("Key = %q, want b-1", msg.Key)
	}
	if msg.GetEventType() != model.EventBookingStatusChanged {
		t.Errorf("event type header = %q", msg.GetEventType())
	}
	if msg.GetCorrelationID() != "req-123" {
		t.Errorf("correlation id = %q, want req-123", msg.GetCorrelationID())
	}
	if msg.Headers[kafka.HeaderSource] != Source {
		t.Errorf("source header = %q", msg.Headers[kafka.HeaderSource])
	}

	var decoded model.BookingEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded.Status != model.StatusConfirmed || decoded.PrevStatus != model.StatusPending {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	fp := &fakeProducer{err: errors.New("broker down")}
	pub := &KafkaPublisher{producer: fp, log: logger.Nop()}

	err := pub.Publish(context.Background(), model.BookingEvent{Type: model.EventBookingCreated, BookingID: "b-1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, fp.err) {
		t.Errorf("error should wrap the producer error, got %v", err)
	}
}

func TestKafkaPublisher_Close(t *testing.T) {
	fp := &fakeProducer{}
	pub := &KafkaPublisher{producer: fp, log: logger.Nop()}

	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !fp.closed {
		t.Error("producer was not closed")
	}
}
