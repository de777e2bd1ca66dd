package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	bookingserrors "servicehub/internal/bookings/errors"
	apperrors "servicehub/pkg/errors"
	"servicehub/pkg/metrics"
	"servicehub/pkg/model"
	"servicehub/pkg/sanitizer"

	"github.com/google/uuid"
)

// AppendMessage adds text to the booking's thread on behalf of one of its
// parties. Closed bookings accept no new messages.
func (s *bookingService) AppendMessage(ctx context.Context, id, authorID, text string) (*model.Message, error) {
	text = sanitizer.SanitizeMessageText(text)
	if text == "" {
		return nil, apperrors.InvalidInput("Message text cannot be empty")
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Message text must be at most %d characters", maxMessageLength))
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.IsParty(authorID) {
		return nil, apperrors.Forbidden("You are not a party to this booking")
	}
	if booking.Status.IsTerminal() {
		return nil, closedThread(booking.Status)
	}

	msg := model.Message{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Text:      text,
		Timestamp: s.now(),
	}

	if err := s.repo.AppendMessage(ctx, booking.ID, msg); err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return nil, closedThread("closed")
		}
		s.cfg.Log.Error("Failed to append message", "id", booking.ID, "error", err)
		return nil, apperrors.Internal("Failed to append message", err)
	}

	metrics.IncMessageAppended()
	s.cfg.Log.Info("Message appended", "id", booking.ID, "author_id", authorID)

	event := s.event(model.EventBookingMessageAdded, booking, authorID)
	event.Message = &msg
	s.publish(ctx, event)

	return &msg, nil
}

const maxMessageLength = 2000

func closedThread(status model.BookingStatus) *apperrors.AppError {
	return apperrors.New(
		apperrors.CodeInvalidTransition,
		fmt.Sprintf("Cannot add messages to a %s booking", status),
		http.StatusConflict,
	).WithDetails(map[string]any{"status": status.String()})
}
