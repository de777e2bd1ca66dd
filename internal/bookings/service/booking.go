package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	bookingserrors "servicehub/internal/bookings/errors"
	"servicehub/internal/bookings/events"
	"servicehub/internal/bookings/repository"
	"servicehub/internal/bookings/validator"
	"servicehub/pkg/config"
	apperrors "servicehub/pkg/errors"
	"servicehub/pkg/metrics"
	"servicehub/pkg/model"
	"servicehub/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	slotLockRetryInterval = 25 * time.Millisecond
	slotLockMaxInterval   = 200 * time.Millisecond
)

// ListingLookup resolves the service listing a booking refers to. It must
// report deleted listings as not found.
type ListingLookup interface {
	GetByID(ctx context.Context, id string) (*model.ServiceListing, error)
}

type BookingService interface {
	Create(ctx context.Context, customerID string, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id, userID string) (*model.Booking, error)
	List(ctx context.Context, userID, role, status string, page, limit int) (*model.BookingPage, error)
	SetStatus(ctx context.Context, id, requested, actingUserID string) (*model.Booking, error)
	AppendMessage(ctx context.Context, id, authorID, text string) (*model.Message, error)
	Stats(ctx context.Context, providerID string) (*model.ProviderStats, error)
	CheckAvailability(ctx context.Context, serviceID, date, clock string, duration int) (*model.Availability, error)
	Export(ctx context.Context, userID, role, status string) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	listings  ListingLookup
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	listings ListingLookup,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		listings:  listings,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *bookingService) Create(ctx context.Context, customerID string, req *model.BookingRequest) (*model.Booking, error) {
	customerID = sanitizer.SanitizeID(customerID)
	if customerID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	s.sanitize(req)
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "customer_id", customerID, "error", err)
		return nil, apperrors.InvalidInput("Booking validation failed").
			WithDetails(map[string]any{"errors": err})
	}

	listing, err := s.listings.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if listing.ProviderID != req.ProviderID {
		return nil, apperrors.InvalidInput("provider_id does not match the service's provider")
	}
	if listing.ProviderID == customerID {
		return nil, apperrors.InvalidInput("You cannot book your own service")
	}

	totalPrice := roundCents(listing.HourlyRate * float64(req.Duration))
	if req.TotalPrice != nil && roundCents(*req.TotalPrice) != totalPrice {
		s.cfg.Log.Warn("Submitted total price ignored",
			"service_id", req.ServiceID,
			"submitted", *req.TotalPrice,
			"computed", totalPrice,
		)
	}

	now := s.now()
	booking := &model.Booking{
		ServiceID:  req.ServiceID,
		CustomerID: customerID,
		ProviderID: listing.ProviderID,
		Date:       req.Date,
		Time:       req.Time,
		Duration:   req.Duration,
		Status:     model.StatusPending,
		TotalPrice: totalPrice,
		Messages:   []model.Message{},
	}
	if req.Message != "" {
		booking.Messages = append(booking.Messages, model.Message{
			ID:        uuid.NewString(),
			AuthorID:  customerID,
			Text:      req.Message,
			Timestamp: now,
		})
	}

	release, err := s.acquireSlotLock(ctx, booking.ServiceID, booking.Date)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// the driver may rerun this callback; an ID left by an aborted attempt
		// would be inserted as a string _id
		booking.ID = ""

		conflict, err := s.checkConflict(sessCtx, booking.ServiceID, booking.Date, booking.Time, booking.Duration, "")
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if conflict != nil {
			metrics.IncSlotRejected("overlap")
			return apperrors.SlotUnavailable(fmt.Sprintf(
				"Time slot overlaps an existing booking at %s for %dh", conflict.Time, conflict.Duration,
			)).WithDetails(map[string]any{"conflict": slotWindow(conflict)})
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeSlotUnavailable) {
			s.cfg.Log.Warn("Booking rejected, slot unavailable",
				"service_id", booking.ServiceID,
				"date", booking.Date,
				"time", booking.Time,
			)
			return nil, err
		}
		s.cfg.Log.Error("Failed to create booking", "service_id", booking.ServiceID, "error", err)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	metrics.IncBookingCreated()
	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"service_id", booking.ServiceID,
		"customer_id", booking.CustomerID,
		"provider_id", booking.ProviderID,
		"date", booking.Date,
		"time", booking.Time,
	)

	s.publish(ctx, s.event(model.EventBookingCreated, booking, customerID))
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id, userID string) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.IsParty(userID) {
		return nil, apperrors.Forbidden("You are not a party to this booking")
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, userID, role, status string, page, limit int) (*model.BookingPage, error) {
	filter, err := s.listFilter(userID, role, status)
	if err != nil {
		return nil, err
	}

	page = config.NormalizePage(page)
	limit = config.NormalizePaginationLimit(limit)
	offset := config.NormalizeOffset(int64(page-1) * int64(limit))

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByParty(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "user_id", userID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByParty(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "user_id", userID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, errCount
	}
	if errFind != nil {
		return nil, errFind
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	return &model.BookingPage{
		Bookings: bookings,
		Total:    count,
		Page:     page,
		Limit:    limit,
	}, nil
}

func (s *bookingService) Stats(ctx context.Context, providerID string) (*model.ProviderStats, error) {
	providerID = sanitizer.SanitizeID(providerID)
	if providerID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	stats, err := s.repo.ProviderStats(ctx, providerID)
	if err != nil {
		s.cfg.Log.Error("Failed to compute provider stats", "provider_id", providerID, "error", err)
		return nil, apperrors.Internal("Failed to compute provider stats", err)
	}
	stats.TotalEarnings = roundCents(stats.TotalEarnings)
	return stats, nil
}

// CheckAvailability runs the conflict check without writing anything.
func (s *bookingService) CheckAvailability(ctx context.Context, serviceID, date, clock string, duration int) (*model.Availability, error) {
	serviceID = sanitizer.SanitizeID(serviceID)
	if serviceID == "" {
		return nil, apperrors.InvalidInput("service_id is required")
	}
	if !model.IsCalendarDate(date) {
		return nil, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
	}
	if err := s.validator.ValidateSlot(clock, duration); err != nil {
		return nil, apperrors.InvalidInput("Invalid time slot").
			WithDetails(map[string]any{"errors": err})
	}

	conflict, err := s.checkConflict(ctx, serviceID, date, clock, duration, "")
	if err != nil {
		s.cfg.Log.Error("Failed to check availability", "service_id", serviceID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}
	if conflict == nil {
		return &model.Availability{}, nil
	}
	return &model.Availability{HasConflict: true, Conflict: slotWindow(conflict)}, nil
}

func (s *bookingService) Export(ctx context.Context, userID, role, status string) ([]*model.Booking, error) {
	filter, err := s.listFilter(userID, role, status)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.FindByParty(ctx, filter, s.cfg.ExportMaxRows, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to export bookings", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to export bookings", err)
	}

	s.cfg.Log.Info("Bookings exported", "user_id", userID, "rows", len(bookings))
	return bookings, nil
}

// --- Helpers ---

func (s *bookingService) load(ctx context.Context, id string) (*model.Booking, error) {
	id = sanitizer.SanitizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to retrieve booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) listFilter(userID, role, status string) (repository.ListFilter, error) {
	userID = sanitizer.SanitizeID(userID)
	if userID == "" {
		return repository.ListFilter{}, apperrors.Unauthorized("Authentication required")
	}

	// any other role lists bookings on both sides
	filter := repository.ListFilter{UserID: userID}
	switch role {
	case repository.RoleCustomer, repository.RoleProvider:
		filter.Role = role
	}

	if status != "" {
		parsed, ok := model.ParseBookingStatus(status)
		if !ok {
			return repository.ListFilter{}, apperrors.InvalidStatus(status)
		}
		filter.Status = parsed
	}
	return filter, nil
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.ServiceID = sanitizer.SanitizeID(req.ServiceID)
	req.ProviderID = sanitizer.SanitizeID(req.ProviderID)
	req.Date = sanitizer.SanitizeID(req.Date)
	req.Time = sanitizer.SanitizeID(req.Time)
	req.Message = sanitizer.SanitizeMessageText(req.Message)
}

// acquireSlotLock serializes creators of the same service-day. A held lock
// is retried with linear backoff for up to SlotLockWait. The returned func
// releases the lock and never fails the request.
func (s *bookingService) acquireSlotLock(ctx context.Context, serviceID, date string) (func(), error) {
	lock := &model.SlotLock{
		ID:    model.SlotLockID(serviceID, date),
		Owner: uuid.NewString(),
	}

	deadline := time.Now().Add(s.cfg.SlotLockWait)
	for attempt := 1; ; attempt++ {
		lock.ExpiresAt = s.now().Add(s.cfg.SlotLockTTL)
		err := s.lockRepo.Acquire(ctx, lock)
		if err == nil {
			break
		}
		if !errors.Is(err, bookingserrors.ErrSlotLocked) {
			s.cfg.Log.Error("Failed to acquire slot lock", "lock_id", lock.ID, "error", err)
			return nil, apperrors.Internal("Failed to acquire slot lock", err)
		}

		wait := min(time.Duration(attempt)*slotLockRetryInterval, slotLockMaxInterval)
		if time.Until(deadline) < wait {
			metrics.IncSlotRejected("locked")
			s.cfg.Log.Warn("Slot lock still held, giving up",
				"lock_id", lock.ID,
				"attempts", attempt,
			)
			return nil, apperrors.Conflict("Another booking for this service and date is being processed. Please retry.").
				WithDetails(map[string]any{"retryable": true})
		}

		select {
		case <-ctx.Done():
			return nil, apperrors.Timeout("Timed out waiting for the booking slot")
		case <-time.After(wait):
		}
	}

	return func() {
		if err := s.lockRepo.Release(context.WithoutCancel(ctx), lock.ID, lock.Owner); err != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lock.ID, "error", err)
		}
	}, nil
}

func (s *bookingService) event(eventType string, b *model.Booking, actorID string) model.BookingEvent {
	return model.BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		ServiceID:  b.ServiceID,
		CustomerID: b.CustomerID,
		ProviderID: b.ProviderID,
		ActorID:    actorID,
		Status:     b.Status,
		Date:       b.Date,
		Time:       b.Time,
		OccurredAt: s.now(),
	}
}

// publish is best-effort: the booking change is already committed.
func (s *bookingService) publish(ctx context.Context, event model.BookingEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
