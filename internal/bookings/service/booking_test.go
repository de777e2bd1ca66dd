package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingserrors "servicehub/internal/bookings/errors"
	apperrors "servicehub/pkg/errors"
	"servicehub/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}

func TestCreate_OverlapScenario(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first, err := env.svc.Create(ctx, customerID, request("14:00", 2))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, first.Status)
	assert.Equal(t, customerID, first.CustomerID)
	assert.Equal(t, providerID, first.ProviderID)
	assert.Equal(t, 50.0, first.TotalPrice)
	assert.NotEmpty(t, first.ID)

	_, err = env.svc.Create(ctx, "carol", request("15:00", 1))
	assertCode(t, err, apperrors.CodeSlotUnavailable)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, 409, appErr.StatusCode())
	assert.Equal(t, &model.SlotWindow{Date: "2025-03-10", Time: "14:00", Duration: 2}, appErr.Details["conflict"])

	assert.Equal(t, env.locks.acquired, env.locks.released, "every slot lock must be released")
}

func TestCreate_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *model.BookingRequest)
		wantErr string
	}{
		{"touching after", func(r *model.BookingRequest) { r.Time = "16:00"; r.Duration = 1 }, ""},
		{"touching before", func(r *model.BookingRequest) { r.Time = "12:00"; r.Duration = 2 }, ""},
		{"straddling start", func(r *model.BookingRequest) { r.Time = "13:00"; r.Duration = 2 }, apperrors.CodeSlotUnavailable},
		{"covering", func(r *model.BookingRequest) { r.Time = "13:00"; r.Duration = 4 }, apperrors.CodeSlotUnavailable},
		{"other date", func(r *model.BookingRequest) { r.Date = "2025-03-11" }, ""},
		{"other service", func(r *model.BookingRequest) { r.ServiceID = otherService }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			ctx := context.Background()

			_, err := env.svc.Create(ctx, customerID, request("14:00", 2))
			require.NoError(t, err)

			req := request("14:00", 2)
			tt.mutate(req)
			_, err = env.svc.Create(ctx, "carol", req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assertCode(t, err, tt.wantErr)
		})
	}
}

func TestCreate_TerminalBookingsFreeTheSlot(t *testing.T) {
	for _, status := range []model.BookingStatus{model.StatusCancelled, model.StatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			env := newTestEnv()
			ctx := context.Background()

			first, err := env.svc.Create(ctx, customerID, request("14:00", 2))
			require.NoError(t, err)
			env.repo.setStatus(first.ID, status)

			_, err = env.svc.Create(ctx, "carol", request("14:30", 1))
			assert.NoError(t, err)
		})
	}
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		customer string
		mutate   func(r *model.BookingRequest)
		wantCode string
	}{
		{"unauthenticated", "", func(r *model.BookingRequest) {}, apperrors.CodeUnauthorized},
		{"missing date", customerID, func(r *model.BookingRequest) { r.Date = "" }, apperrors.CodeInvalidInput},
		{"malformed time", customerID, func(r *model.BookingRequest) { r.Time = "xx:00" }, apperrors.CodeInvalidInput},
		{"past midnight", customerID, func(r *model.BookingRequest) { r.Time = "23:00"; r.Duration = 2 }, apperrors.CodeInvalidInput},
		{"unknown service", customerID, func(r *model.BookingRequest) { r.ServiceID = "65f1a2b3c4d5e6f7a8b9c0ff" }, apperrors.CodeNotFound},
		{"deleted service", customerID, func(r *model.BookingRequest) { r.ServiceID = deletedID }, apperrors.CodeNotFound},
		{"provider mismatch", customerID, func(r *model.BookingRequest) { r.ProviderID = "eve" }, apperrors.CodeInvalidInput},
		{"own service", providerID, func(r *model.BookingRequest) {}, apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			req := request("10:00", 1)
			tt.mutate(req)

			_, err := env.svc.Create(context.Background(), tt.customer, req)
			assertCode(t, err, tt.wantCode)
			assert.Empty(t, env.publisher.events)
		})
	}
}

func TestCreate_WaitsForInFlightLockOnSameDay(t *testing.T) {
	env := newTestEnv()
	lockID := model.SlotLockID(testServiceID, "2025-03-10")
	env.locks.hold(lockID, "in-flight-09:00")

	go func() {
		time.Sleep(40 * time.Millisecond)
		env.locks.drop(lockID)
	}()

	b, err := env.svc.Create(context.Background(), customerID, request("18:00", 1))
	require.NoError(t, err)
	assert.Equal(t, "18:00", b.Time)
	assert.Equal(t, env.locks.acquired, env.locks.released)
}

func TestCreate_LockHeldPastWaitIsRetryableConflict(t *testing.T) {
	env := newTestEnv()
	env.locks.hold(model.SlotLockID(testServiceID, "2025-03-10"), "stuck")

	_, err := env.svc.Create(context.Background(), customerID, request("18:00", 1))
	assertCode(t, err, apperrors.CodeConflict)
	assert.False(t, apperrors.HasCode(err, apperrors.CodeSlotUnavailable))
	assert.Equal(t, true, apperrors.AsAppError(err).Details["retryable"])
	assert.Empty(t, env.repo.bookings)
}

func TestCreate_LockWaitStopsOnCancelledContext(t *testing.T) {
	env := newTestEnv()
	env.svc.cfg.SlotLockWait = 10 * time.Second
	env.locks.hold(model.SlotLockID(testServiceID, "2025-03-10"), "stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	_, err := env.svc.Create(ctx, customerID, request("18:00", 1))
	assertCode(t, err, apperrors.CodeTimeout)
}

func TestCreate_RetriedTransactionInsertsFreshDocument(t *testing.T) {
	env := newTestEnv()
	env.repo.replays = 1

	b, err := env.svc.Create(context.Background(), customerID, request("10:00", 1))
	require.NoError(t, err)

	stored, err := env.repo.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, stored.ID)
	assert.Len(t, env.repo.bookings, 1)
}

func TestCreate_IgnoresSubmittedPrice(t *testing.T) {
	env := newTestEnv()
	req := request("10:00", 3)
	cheap := 1.0
	req.TotalPrice = &cheap

	b, err := env.svc.Create(context.Background(), customerID, req)
	require.NoError(t, err)
	assert.Equal(t, 75.0, b.TotalPrice)
}

func TestCreate_SeedsInitialMessage(t *testing.T) {
	env := newTestEnv()
	req := request("10:00", 1)
	req.Message = "  Can we meet at the library?  "

	b, err := env.svc.Create(context.Background(), customerID, req)
	require.NoError(t, err)
	require.Len(t, b.Messages, 1)
	assert.Equal(t, "Can we meet at the library?", b.Messages[0].Text)
	assert.Equal(t, customerID, b.Messages[0].AuthorID)
	assert.NotEmpty(t, b.Messages[0].ID)

	assert.Equal(t, []string{model.EventBookingCreated}, env.publisher.types())
}

func TestCreate_PublishFailureDoesNotFailRequest(t *testing.T) {
	env := newTestEnv()
	env.publisher.err = errors.New("broker down")

	_, err := env.svc.Create(context.Background(), customerID, request("10:00", 1))
	assert.NoError(t, err)
}

func TestCreate_ConcurrentOverlappingRequests(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.svc.Create(ctx, "customer-"+string(rune('a'+i)), request("14:00", 2))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.True(t, apperrors.HasCode(err, apperrors.CodeSlotUnavailable), "unexpected error: %v", err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	active, err := env.repo.FindActiveByServiceAndDate(ctx, testServiceID, "2025-03-10", "")
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestCreate_ConcurrentDisjointRequestsAllSucceed(t *testing.T) {
	env := newTestEnv()
	env.svc.cfg.SlotLockWait = 5 * time.Second
	ctx := context.Background()

	clocks := []string{"08:00", "09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00"}
	errs := make([]error, len(clocks))
	var wg sync.WaitGroup
	for i, clock := range clocks {
		wg.Add(1)
		go func(i int, clock string) {
			defer wg.Done()
			_, errs[i] = env.svc.Create(ctx, "customer-"+clock, request(clock, 1))
		}(i, clock)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "booking at %s", clocks[i])
	}
	active, err := env.repo.FindActiveByServiceAndDate(ctx, testServiceID, "2025-03-10", "")
	require.NoError(t, err)
	assert.Len(t, active, len(clocks))
}

func TestGetByID_AccessRule(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	b, err := env.svc.Create(ctx, customerID, request("10:00", 1))
	require.NoError(t, err)

	for _, user := range []string{customerID, providerID} {
		got, err := env.svc.GetByID(ctx, b.ID, user)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	}

	_, err = env.svc.GetByID(ctx, b.ID, strangerID)
	assertCode(t, err, apperrors.CodeForbidden)

	_, err = env.svc.GetByID(ctx, "65f1a2b3c4d5e6f7a8b9c0ee", customerID)
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = env.svc.GetByID(ctx, "  ", customerID)
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestGetByID_RepositoryErrors(t *testing.T) {
	tests := []struct {
		name     string
		repoErr  error
		wantCode string
	}{
		{"invalid id", bookingserrors.ErrInvalidID, apperrors.CodeInvalidInput},
		{"storage failure", errors.New("connection reset"), apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.repo.findErr = tt.repoErr

			_, err := env.svc.GetByID(context.Background(), "whatever", customerID)
			assertCode(t, err, tt.wantCode)
		})
	}
}

func TestList(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for _, clock := range []string{"08:00", "10:00", "12:00"} {
		_, err := env.svc.Create(ctx, customerID, request(clock, 1))
		require.NoError(t, err)
	}
	_, err := env.svc.Create(ctx, "carol", request("14:00", 1))
	require.NoError(t, err)

	page, err := env.svc.List(ctx, customerID, "customer", "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Bookings, 2)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, "12:00", page.Bookings[0].Time, "newest first")

	page, err = env.svc.List(ctx, providerID, "provider", "pending", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	assert.Len(t, page.Bookings, 2)

	page, err = env.svc.List(ctx, strangerID, "", "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.NotNil(t, page.Bookings)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
}

func TestList_UnknownRoleListsBothSides(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.Create(ctx, customerID, request("08:00", 1))
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, "carol", request("10:00", 1))
	require.NoError(t, err)

	for _, role := range []string{"", "admin", "Customer"} {
		page, err := env.svc.List(ctx, providerID, role, "", 1, 10)
		require.NoError(t, err, "role %q", role)
		assert.Equal(t, int64(2), page.Total, "role %q", role)

		page, err = env.svc.List(ctx, customerID, role, "", 1, 10)
		require.NoError(t, err, "role %q", role)
		assert.Equal(t, int64(1), page.Total, "role %q", role)
	}

	page, err := env.svc.List(ctx, providerID, "customer", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
}

func TestList_InvalidFilters(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.List(ctx, customerID, "", "archived", 1, 10)
	assertCode(t, err, apperrors.CodeInvalidStatus)

	_, err = env.svc.List(ctx, "", "", "", 1, 10)
	assertCode(t, err, apperrors.CodeUnauthorized)
}

func TestStats(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	a, err := env.svc.Create(ctx, customerID, request("08:00", 2))
	require.NoError(t, err)
	b, err := env.svc.Create(ctx, customerID, request("11:00", 1))
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, customerID, request("13:00", 1))
	require.NoError(t, err)

	_, err = env.svc.SetStatus(ctx, a.ID, "confirmed", providerID)
	require.NoError(t, err)
	_, err = env.svc.SetStatus(ctx, a.ID, "completed", providerID)
	require.NoError(t, err)
	_, err = env.svc.SetStatus(ctx, b.ID, "confirmed", providerID)
	require.NoError(t, err)

	stats, err := env.svc.Stats(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, &model.ProviderStats{
		TotalEarnings:  50,
		CompletedCount: 1,
		PendingCount:   1,
		ConfirmedCount: 1,
	}, stats)
}

func TestCheckAvailability(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.Create(ctx, customerID, request("14:00", 2))
	require.NoError(t, err)

	avail, err := env.svc.CheckAvailability(ctx, testServiceID, "2025-03-10", "15:00", 1)
	require.NoError(t, err)
	assert.True(t, avail.HasConflict)
	assert.Equal(t, "14:00", avail.Conflict.Time)

	avail, err = env.svc.CheckAvailability(ctx, testServiceID, "2025-03-10", "16:00", 1)
	require.NoError(t, err)
	assert.False(t, avail.HasConflict)
	assert.Nil(t, avail.Conflict)

	_, err = env.svc.CheckAvailability(ctx, testServiceID, "10-03-2025", "16:00", 1)
	assertCode(t, err, apperrors.CodeInvalidInput)

	_, err = env.svc.CheckAvailability(ctx, testServiceID, "2025-03-10", "25:00", 1)
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestCheckAvailability_RejectsDurationsCreateWouldRefuse(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.Create(ctx, customerID, request("14:00", 2))
	require.NoError(t, err)

	for _, hours := range []int{9, 25, 153722867280912931} {
		_, err = env.svc.CheckAvailability(ctx, testServiceID, "2025-03-10", "14:00", hours)
		assertCode(t, err, apperrors.CodeInvalidInput)

		_, err = env.svc.Create(ctx, "carol", request("14:00", hours))
		assertCode(t, err, apperrors.CodeInvalidInput)
	}
}

func TestExport_CapsRows(t *testing.T) {
	env := newTestEnv()
	env.svc.cfg.ExportMaxRows = 2
	ctx := context.Background()

	for _, clock := range []string{"08:00", "10:00", "12:00"} {
		_, err := env.svc.Create(ctx, customerID, request(clock, 1))
		require.NoError(t, err)
	}

	rows, err := env.svc.Export(ctx, customerID, "", "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestFindConflict(t *testing.T) {
	existing := []*model.Booking{
		{ID: "cancelled", Time: "10:00", Duration: 2, Status: model.StatusCancelled},
		{ID: "morning", Time: "09:00", Duration: 1, Status: model.StatusPending},
		{ID: "noon", Time: "12:00", Duration: 2, Status: model.StatusConfirmed},
	}

	candidate, err := model.NewSlotInterval("10:30", 1)
	require.NoError(t, err)
	assert.Nil(t, findConflict(candidate, existing), "cancelled bookings do not occupy the slot")

	candidate, err = model.NewSlotInterval("11:00", 2)
	require.NoError(t, err)
	got := findConflict(candidate, existing)
	require.NotNil(t, got)
	assert.Equal(t, "noon", got.ID)

	assert.Nil(t, findConflict(candidate, nil))
}
