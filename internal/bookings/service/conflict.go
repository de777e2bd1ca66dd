package service

import (
	"context"

	"servicehub/pkg/model"
)

// findConflict returns the first active booking whose slot overlaps
// candidate, or nil. Bookings with unparseable times are ignored; they
// cannot have passed validation.
func findConflict(candidate model.SlotInterval, existing []*model.Booking) *model.Booking {
	for _, b := range existing {
		if !b.Status.IsActive() {
			continue
		}
		interval, err := model.NewSlotInterval(b.Time, b.Duration)
		if err != nil {
			continue
		}
		if candidate.Overlaps(interval) {
			return b
		}
	}
	return nil
}

// checkConflict loads the active bookings of serviceID on date and tests the
// candidate slot against them. excludeID skips a booking's own record.
func (s *bookingService) checkConflict(ctx context.Context, serviceID, date, clock string, duration int, excludeID string) (*model.Booking, error) {
	candidate, err := model.NewSlotInterval(clock, duration)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindActiveByServiceAndDate(ctx, serviceID, date, excludeID)
	if err != nil {
		return nil, err
	}

	return findConflict(candidate, existing), nil
}

func slotWindow(b *model.Booking) *model.SlotWindow {
	return &model.SlotWindow{Date: b.Date, Time: b.Time, Duration: b.Duration}
}
