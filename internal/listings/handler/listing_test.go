package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"servicehub/internal/listings/repository"
	apperrors "servicehub/pkg/errors"
	httputil "servicehub/pkg/http"
	"servicehub/pkg/logger"
	"servicehub/pkg/middleware"
	"servicehub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockListingService struct {
	listFunc   func(ctx context.Context, filter repository.ListingFilter, limit int, offset int64) ([]*model.ServiceListing, int64, error)
	updateFunc func(ctx context.Context, id, userID string, updates *model.ListingUpdate) (*model.ServiceListing, error)
	deleteFunc func(ctx context.Context, id, userID string) error
}

func (m *mockListingService) Create(ctx context.Context, providerID string, req *model.ListingRequest) (*model.ServiceListing, error) {
	return &model.ServiceListing{ID: "l-1", ProviderID: providerID, Title: req.Title, Status: model.ListingActive}, nil
}

func (m *mockListingService) GetByID(ctx context.Context, id string) (*model.ServiceListing, error) {
	if id == "gone" {
		return nil, apperrors.NotFoundWithID("Service", id)
	}
	return &model.ServiceListing{ID: id}, nil
}

func (m *mockListingService) List(ctx context.Context, filter repository.ListingFilter, limit int, offset int64) ([]*model.ServiceListing, int64, error) {
	return m.listFunc(ctx, filter, limit, offset)
}

func (m *mockListingService) Update(ctx context.Context, id, userID string, updates *model.ListingUpdate) (*model.ServiceListing, error) {
	return m.updateFunc(ctx, id, userID, updates)
}

func (m *mockListingService) Delete(ctx context.Context, id, userID string) error {
	return m.deleteFunc(ctx, id, userID)
}

func serve(h *ListingHandler, method, target, body, userID string) *httptest.ResponseRecorder {
	router := httprouter.New()
	h.RegisterRoutes(router)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestList_QueryParameters(t *testing.T) {
	var receivedLimit int
	var receivedOffset int64
	var receivedFilter repository.ListingFilter
	h := NewListingHandler(&mockListingService{
		listFunc: func(ctx context.Context, filter repository.ListingFilter, limit int, offset int64) ([]*model.ServiceListing, int64, error) {
			receivedLimit, receivedOffset, receivedFilter = limit, offset, filter
			return []*model.ServiceListing{}, 42, nil
		},
	}, logger.Nop())

	tests := []struct {
		name           string
		queryString    string
		expectHTTPCode int
		wantLimit      int
		wantOffset     int64
	}{
		{"defaults", "", http.StatusOK, 10, 0},
		{"third page", "?page=3&limit=20", http.StatusOK, 20, 40},
		{"limit capped", "?limit=500", http.StatusOK, 50, 0},
		{"invalid limit", "?limit=abc", http.StatusBadRequest, 0, 0},
		{"invalid page", "?page=xyz", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receivedLimit, receivedOffset = 0, 0
			rec := serve(h, http.MethodGet, "/api/v1/services"+tt.queryString, "", "alice")

			if rec.Code != tt.expectHTTPCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.expectHTTPCode)
			}
			if tt.expectHTTPCode != http.StatusOK {
				return
			}
			if receivedLimit != tt.wantLimit || receivedOffset != tt.wantOffset {
				t.Errorf("limit/offset = %d/%d, want %d/%d", receivedLimit, receivedOffset, tt.wantLimit, tt.wantOffset)
			}

			var resp httputil.PaginatedResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Total != 42 || resp.Limit != tt.wantLimit {
				t.Errorf("unexpected pagination: %+v", resp)
			}
		})
	}

	serve(h, http.MethodGet, "/api/v1/services?category=moving", "", "alice")
	if receivedFilter.Category != "moving" || receivedFilter.MinRate != nil || receivedFilter.MaxRate != nil {
		t.Errorf("unexpected filter: %+v", receivedFilter)
	}

	rec := serve(h, http.MethodGet, "/api/v1/services?min_rate=10&max_rate=25.5", "", "alice")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if receivedFilter.MinRate == nil || *receivedFilter.MinRate != 10 || receivedFilter.MaxRate == nil || *receivedFilter.MaxRate != 25.5 {
		t.Errorf("rate bounds not passed through: %+v", receivedFilter)
	}

	if rec := serve(h, http.MethodGet, "/api/v1/services?max_rate=cheap", "", "alice"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdate(t *testing.T) {
	var received *model.ListingUpdate
	h := NewListingHandler(&mockListingService{
		updateFunc: func(ctx context.Context, id, userID string, updates *model.ListingUpdate) (*model.ServiceListing, error) {
			if userID != "bob" {
				return nil, apperrors.Forbidden("Only the provider can update this service")
			}
			received = updates
			return &model.ServiceListing{ID: id, ProviderID: userID, HourlyRate: 40}, nil
		},
	}, logger.Nop())

	rec := serve(h, http.MethodPut, "/api/v1/services/id/l-1", `{"hourly_rate":40}`, "bob")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if received == nil || received.HourlyRate == nil || *received.HourlyRate != 40 || received.Title != nil {
		t.Errorf("unexpected updates: %+v", received)
	}

	if rec := serve(h, http.MethodPut, "/api/v1/services/id/l-1", `{"hourly_rate":40}`, "mallory"); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if rec := serve(h, http.MethodPut, "/api/v1/services/id/l-1", `{`, "bob"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreate(t *testing.T) {
	h := NewListingHandler(&mockListingService{}, logger.Nop())

	rec := serve(h, http.MethodPost, "/api/v1/services", `{"title":"Calculus","category":"tutoring","hourly_rate":25}`, "bob")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	rec = serve(h, http.MethodPost, "/api/v1/services", `not json`, "bob")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetAndDelete(t *testing.T) {
	h := NewListingHandler(&mockListingService{
		deleteFunc: func(ctx context.Context, id, userID string) error {
			if userID != "bob" {
				return apperrors.Forbidden("Only the provider can delete this service")
			}
			return nil
		},
	}, logger.Nop())

	if rec := serve(h, http.MethodGet, "/api/v1/services/id/gone", "", "alice"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec := serve(h, http.MethodGet, "/api/v1/services/id/l-1", "", "alice"); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec := serve(h, http.MethodDelete, "/api/v1/services/id/l-1", "", "alice"); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if rec := serve(h, http.MethodDelete, "/api/v1/services/id/l-1", "", "bob"); rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
