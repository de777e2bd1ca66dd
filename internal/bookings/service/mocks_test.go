package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	bookingserrors "servicehub/internal/bookings/errors"
	"servicehub/internal/bookings/repository"
	"servicehub/internal/bookings/validator"
	"servicehub/pkg/config"
	mongotx "servicehub/pkg/db/mongo"
	apperrors "servicehub/pkg/errors"
	"servicehub/pkg/logger"
	"servicehub/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memBookingRepository keeps bookings in memory and honours the same
// conditional-write rules as the Mongo repository.
type memBookingRepository struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	seq      int64

	updateStatusErr error
	findErr         error

	// replays makes ExecuteTransaction run and roll back the callback this
	// many times before the committing run.
	replays int
}

func newMemBookingRepository() *memBookingRepository {
	return &memBookingRepository{bookings: make(map[string]*model.Booking)}
}

func clone(b *model.Booking) *model.Booking {
	c := *b
	c.Messages = append([]model.Message(nil), b.Messages...)
	return &c
}

func (m *memBookingRepository) Create(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID != "" {
		return errors.New("insert carries a string _id from a previous attempt")
	}
	m.seq++
	b.ID = primitive.NewObjectID().Hex()
	b.CreatedAt = time.Unix(m.seq, 0).UTC()
	b.UpdatedAt = b.CreatedAt
	m.bookings[b.ID] = clone(b)
	return nil
}

func (m *memBookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return clone(b), nil
}

func (m *memBookingRepository) FindActiveByServiceAndDate(_ context.Context, serviceID, date, excludeID string) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.ServiceID == serviceID && b.Date == date && b.Status.IsActive() && b.ID != excludeID {
			out = append(out, clone(b))
		}
	}
	return out, nil
}

func (m *memBookingRepository) matching(f repository.ListFilter) []*model.Booking {
	var out []*model.Booking
	for _, b := range m.bookings {
		switch f.Role {
		case repository.RoleCustomer:
			if b.CustomerID != f.UserID {
				continue
			}
		case repository.RoleProvider:
			if b.ProviderID != f.UserID {
				continue
			}
		default:
			if !b.IsParty(f.UserID) {
				continue
			}
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, clone(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memBookingRepository) FindByParty(_ context.Context, f repository.ListFilter, limit int, offset int64) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.matching(f)
	if int(offset) >= len(all) {
		return []*model.Booking{}, nil
	}
	end := min(int(offset)+limit, len(all))
	return all[offset:end], nil
}

func (m *memBookingRepository) CountByParty(_ context.Context, f repository.ListFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(f))), nil
}

func (m *memBookingRepository) UpdateStatus(_ context.Context, id string, from, to model.BookingStatus, at time.Time) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateStatusErr != nil {
		return nil, m.updateStatusErr
	}
	b, ok := m.bookings[id]
	if !ok || b.Status != from {
		return nil, bookingserrors.ErrStatusChanged
	}
	b.Status = to
	b.UpdatedAt = at
	return clone(b), nil
}

func (m *memBookingRepository) AppendMessage(_ context.Context, id string, msg model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || !b.Status.IsActive() {
		return bookingserrors.ErrStatusChanged
	}
	b.Messages = append(b.Messages, msg)
	b.UpdatedAt = msg.Timestamp
	return nil
}

func (m *memBookingRepository) ProviderStats(_ context.Context, providerID string) (*model.ProviderStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &model.ProviderStats{}
	for _, b := range m.bookings {
		if b.ProviderID != providerID {
			continue
		}
		switch b.Status {
		case model.StatusCompleted:
			stats.CompletedCount++
			stats.TotalEarnings += b.TotalPrice
		case model.StatusPending:
			stats.PendingCount++
		case model.StatusConfirmed:
			stats.ConfirmedCount++
		}
	}
	return stats, nil
}

func (m *memBookingRepository) ExecuteTransaction(_ context.Context, fn mongotx.TransactionFunc) error {
	for m.replays > 0 {
		m.replays--
		m.mu.Lock()
		snapshot := make(map[string]*model.Booking, len(m.bookings))
		for id, b := range m.bookings {
			snapshot[id] = b
		}
		m.mu.Unlock()

		if err := fn(nil); err != nil {
			return err
		}

		m.mu.Lock()
		m.bookings = snapshot
		m.mu.Unlock()
	}
	return fn(nil)
}

func (m *memBookingRepository) get(id string) *model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.bookings[id])
}

func (m *memBookingRepository) setStatus(id string, status model.BookingStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[id].Status = status
}

type memSlotLockRepository struct {
	mu       sync.Mutex
	held     map[string]string
	acquired int
	released int
}

func newMemSlotLockRepository() *memSlotLockRepository {
	return &memSlotLockRepository{held: make(map[string]string)}
}

func (m *memSlotLockRepository) Acquire(_ context.Context, lock *model.SlotLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[lock.ID]; ok {
		return bookingserrors.ErrSlotLocked
	}
	m.held[lock.ID] = lock.Owner
	m.acquired++
	return nil
}

func (m *memSlotLockRepository) Release(_ context.Context, lockID, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[lockID] == owner {
		delete(m.held, lockID)
		m.released++
	}
	return nil
}

func (m *memSlotLockRepository) hold(lockID, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[lockID] = owner
}

func (m *memSlotLockRepository) drop(lockID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, lockID)
}

type fakeListings struct {
	listings map[string]*model.ServiceListing
}

func (f *fakeListings) GetByID(_ context.Context, id string) (*model.ServiceListing, error) {
	l, ok := f.listings[id]
	if !ok || l.Status != model.ListingActive {
		return nil, apperrors.NotFoundWithID("Service", id)
	}
	return l, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e model.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

const (
	testServiceID = "65f1a2b3c4d5e6f7a8b9c0d1"
	otherService  = "65f1a2b3c4d5e6f7a8b9c0d2"
	deletedID     = "65f1a2b3c4d5e6f7a8b9c0d3"
	customerID    = "alice"
	providerID    = "bob"
	strangerID    = "mallory"
)

type testEnv struct {
	svc       *bookingService
	repo      *memBookingRepository
	locks     *memSlotLockRepository
	publisher *recordingPublisher
}

func newTestEnv() *testEnv {
	log := logger.Nop()
	cfg := &config.Config{
		Log:                     log,
		SlotLockTTL:             30 * time.Second,
		SlotLockWait:            150 * time.Millisecond,
		MaxBookingDurationHours: 8,
		ExportMaxRows:           100,
	}

	listings := &fakeListings{listings: map[string]*model.ServiceListing{
		testServiceID: {ID: testServiceID, ProviderID: providerID, HourlyRate: 25, Status: model.ListingActive},
		otherService:  {ID: otherService, ProviderID: providerID, HourlyRate: 40, Status: model.ListingActive},
		deletedID:     {ID: deletedID, ProviderID: providerID, HourlyRate: 10, Status: model.ListingDeleted},
	}}

	env := &testEnv{
		repo:      newMemBookingRepository(),
		locks:     newMemSlotLockRepository(),
		publisher: &recordingPublisher{},
	}
	svc := NewBookingService(env.repo, env.locks, listings, env.publisher, validator.NewBookingValidator(log, 8), cfg)
	env.svc = svc.(*bookingService)

	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	env.svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	return env
}

func request(clock string, duration int) *model.BookingRequest {
	return &model.BookingRequest{
		ServiceID:  testServiceID,
		ProviderID: providerID,
		Date:       "2025-03-10",
		Time:       clock,
		Duration:   duration,
	}
}
