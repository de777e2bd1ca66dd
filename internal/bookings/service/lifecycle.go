package service

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "servicehub/internal/bookings/errors"
	apperrors "servicehub/pkg/errors"
	"servicehub/pkg/metrics"
	"servicehub/pkg/model"
)

// SetStatus moves a booking along its lifecycle. Only the provider may
// confirm or complete, only the customer may cancel, and terminal bookings
// never change again. The write is conditional on the status read here.
func (s *bookingService) SetStatus(ctx context.Context, id, requested, actingUserID string) (*model.Booking, error) {
	target, ok := model.ParseBookingStatus(requested)
	if !ok {
		return nil, apperrors.InvalidStatus(requested)
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorizeTransition(booking, target, actingUserID); err != nil {
		s.cfg.Log.Warn("Status change forbidden",
			"id", booking.ID,
			"actor", actingUserID,
			"requested", target,
		)
		return nil, err
	}

	current := booking.Status
	if !current.CanTransitionTo(target) {
		s.cfg.Log.Warn("Invalid status transition rejected",
			"id", booking.ID,
			"from", current,
			"to", target,
		)
		return nil, apperrors.InvalidTransition(current.String(), target.String())
	}

	updated, err := s.repo.UpdateStatus(ctx, booking.ID, current, target, s.now())
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			s.cfg.Log.Warn("Concurrent status change detected", "id", booking.ID, "expected", current)
			return nil, apperrors.Conflict("Booking status was changed by another request, reload and retry").
				WithDetails(map[string]any{"expected": current.String()})
		}
		s.cfg.Log.Error("Failed to update booking status", "id", booking.ID, "error", err)
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	metrics.IncStatusTransition(current.String(), target.String())
	s.cfg.Log.Info("Booking status updated",
		"id", updated.ID,
		"from", current,
		"to", target,
		"actor", actingUserID,
	)

	event := s.event(model.EventBookingStatusChanged, updated, actingUserID)
	event.PrevStatus = current
	s.publish(ctx, event)

	return updated, nil
}

func authorizeTransition(b *model.Booking, target model.BookingStatus, actorID string) error {
	switch {
	case !b.IsParty(actorID):
		return apperrors.Forbidden("You are not a party to this booking")
	case target.ProviderOnly() && actorID != b.ProviderID:
		return apperrors.Forbidden(fmt.Sprintf("Only the provider can mark a booking as %s", target))
	case target.CustomerOnly() && actorID != b.CustomerID:
		return apperrors.Forbidden(fmt.Sprintf("Only the customer can mark a booking as %s", target))
	}
	return nil
}
