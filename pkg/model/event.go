package model

import "time"

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingMessageAdded  = "booking.message_added"
)

// BookingEvent is the payload published on the booking events topic.
type BookingEvent struct {
	Type       string        `json:"type"`
	BookingID  string        `json:"booking_id"`
	ServiceID  string        `json:"service_id"`
	CustomerID string        `json:"customer_id"`
	ProviderID string        `json:"provider_id"`
	ActorID    string        `json:"actor_id"`
	Status     BookingStatus `json:"status"`
	PrevStatus BookingStatus `json:"prev_status,omitempty"`
	Date       string        `json:"date"`
	Time       string        `json:"time"`
	Message    *Message      `json:"message,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Recipient is the party who did not trigger the event.
func (e *BookingEvent) Recipient() string {
	if e.ActorID == e.CustomerID {
		return e.ProviderID
	}
	return e.CustomerID
}
