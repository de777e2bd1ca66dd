package model

import "strings"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// ActiveStatuses occupy their time slot and take part in conflict checks.
var ActiveStatuses = []BookingStatus{StatusPending, StatusConfirmed}

func (s BookingStatus) String() string {
	return string(s)
}

func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s BookingStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ParseBookingStatus accepts the four lifecycle values, case-insensitively.
func ParseBookingStatus(raw string) (BookingStatus, bool) {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return "", false
	}
	return status, true
}

// ProviderOnly reports whether only the provider may move a booking into s.
func (s BookingStatus) ProviderOnly() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

// CustomerOnly reports whether only the customer may move a booking into s.
func (s BookingStatus) CustomerOnly() bool {
	return s == StatusCancelled
}
