package notifications

import (
	"context"
	"fmt"

	"servicehub/pkg/kafka"
	"servicehub/pkg/logger"
	"servicehub/pkg/model"
)

// Notification tells one booking party that the other party did something.
type Notification struct {
	Recipient string
	BookingID string
	EventType string
	Summary   string
}

type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

// LogSink writes notifications as structured log lines.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Deliver(ctx context.Context, n Notification) error {
	s.log.InfoContext(ctx, "notify counterpart",
		"recipient", n.Recipient,
		"booking_id", n.BookingID,
		"event_type", n.EventType,
		"summary", n.Summary,
	)
	return nil
}

type Notifier struct {
	sink Sink
	log  *logger.Logger
}

func NewNotifier(sink Sink, log *logger.Logger) *Notifier {
	return &Notifier{sink: sink, log: log}
}

// Handle is a kafka.MessageHandler for the booking events topic. Payloads
// that cannot be decoded or carry an unknown type are permanent failures and
// end up in the DLQ. Sink failures are retried.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("undecodable booking event", err)
	}
	if event.BookingID == "" {
		return kafka.NewPermanentError("booking event without booking_id", nil)
	}

	summary, err := summarize(&event)
	if err != nil {
		return kafka.NewPermanentError("unsupported booking event", err)
	}

	notification := Notification{
		Recipient: event.Recipient(),
		BookingID: event.BookingID,
		EventType: event.Type,
		Summary:   summary,
	}
	if err := n.sink.Deliver(ctx, notification); err != nil {
		return kafka.NewTransientError("notification delivery failed", err)
	}

	n.log.Debug("Booking event handled",
		"booking_id", event.BookingID,
		"event_type", event.Type,
		"correlation_id", msg.GetCorrelationID(),
	)
	return nil
}

func summarize(e *model.BookingEvent) (string, error) {
	switch e.Type {
	case model.EventBookingCreated:
		return fmt.Sprintf("New booking request for %s at %s", e.Date, e.Time), nil
	case model.EventBookingStatusChanged:
		return fmt.Sprintf("Booking on %s at %s is now %s", e.Date, e.Time, e.Status), nil
	case model.EventBookingMessageAdded:
		if e.Message == nil {
			return "", fmt.Errorf("%s without message", e.Type)
		}
		return fmt.Sprintf("New message on booking for %s: %s", e.Date, preview(e.Message.Text)), nil
	default:
		return "", fmt.Errorf("unknown event type %q", e.Type)
	}
}

const previewLen = 80

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen]) + "..."
}
