package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStatusChanged means a conditional update found the booking in a
	// different status than expected, because another request won the race.
	ErrStatusChanged = errors.New("booking status changed concurrently")

	ErrSlotLocked = errors.New("booking slot is locked by another request")
)
