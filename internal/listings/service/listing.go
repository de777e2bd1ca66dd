package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	listingserrors "servicehub/internal/listings/errors"
	"servicehub/internal/listings/repository"
	"servicehub/internal/listings/validator"
	"servicehub/pkg/config"
	apperrors "servicehub/pkg/errors"
	"servicehub/pkg/model"
	"servicehub/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// maxListingsPerProvider bounds the duplicate-title scan.
const maxListingsPerProvider = 200

type ListingService interface {
	Create(ctx context.Context, providerID string, req *model.ListingRequest) (*model.ServiceListing, error)
	GetByID(ctx context.Context, id string) (*model.ServiceListing, error)
	List(ctx context.Context, filter repository.ListingFilter, limit int, offset int64) ([]*model.ServiceListing, int64, error)
	Update(ctx context.Context, id, userID string, updates *model.ListingUpdate) (*model.ServiceListing, error)
	Delete(ctx context.Context, id, userID string) error
}

type listingService struct {
	repo      repository.ListingRepository
	validator *validator.ListingValidator
	cfg       *config.Config
}

func NewListingService(
	repo repository.ListingRepository,
	validator *validator.ListingValidator,
	cfg *config.Config,
) ListingService {
	return &listingService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *listingService) Create(ctx context.Context, providerID string, req *model.ListingRequest) (*model.ServiceListing, error) {
	providerID = sanitizer.SanitizeID(providerID)
	if providerID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	s.sanitize(req)
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Service listing validation failed",
			"provider_id", providerID,
			"title", req.Title,
			"error", err,
		)
		return nil, apperrors.Validation("Service listing validation failed", map[string]any{
			"errors": err,
		})
	}

	listing := &model.ServiceListing{
		ProviderID:  providerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		HourlyRate:  req.HourlyRate,
		Status:      model.ListingActive,
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		listing.ID = ""
		if err := s.checkDuplicateTitle(sessCtx, providerID, listing.Title, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, listing); err != nil {
			return fmt.Errorf("failed to create service listing: %w", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create service listing",
			"provider_id", providerID,
			"title", listing.Title,
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to create service listing", err)
	}

	s.cfg.Log.Info("Service listing created successfully",
		"id", listing.ID,
		"provider_id", providerID,
		"category", listing.Category,
	)
	return listing, nil
}

// GetByID returns an active listing. Deleted listings are reported as not
// found so that nothing new can reference them.
func (s *listingService) GetByID(ctx context.Context, id string) (*model.ServiceListing, error) {
	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Status != model.ListingActive {
		return nil, apperrors.NotFoundWithID("Service", id)
	}
	return listing, nil
}

func (s *listingService) List(ctx context.Context, filter repository.ListingFilter, limit int, offset int64) ([]*model.ServiceListing, int64, error) {
	category := filter.Category
	filter.ProviderID = sanitizer.SanitizeID(filter.ProviderID)
	filter.Category = sanitizer.SanitizeCategory(filter.Category)
	if filter.Category != "" && !model.IsListingCategory(filter.Category) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown category: %s", category))
	}
	if (filter.MinRate != nil && *filter.MinRate < 0) || (filter.MaxRate != nil && *filter.MaxRate < 0) {
		return nil, 0, apperrors.InvalidInput("Rate bounds cannot be negative")
	}
	if filter.MinRate != nil && filter.MaxRate != nil && *filter.MinRate > *filter.MaxRate {
		return nil, 0, apperrors.InvalidInput("min_rate cannot exceed max_rate")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var listings []*model.ServiceListing
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountActive(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count service listings", "error", err)
			errCount = apperrors.Internal("Failed to count service listings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		listings, err = s.repo.FindActive(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list service listings",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve service listings", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return listings, count, nil
}

// Update applies a partial update to an active listing owned by userID.
func (s *listingService) Update(ctx context.Context, id, userID string, updates *model.ListingUpdate) (*model.ServiceListing, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.ProviderID != sanitizer.SanitizeID(userID) {
		return nil, apperrors.Forbidden("Only the provider can update this service")
	}

	s.sanitizeUpdate(updates)
	merged := mergeListingUpdate(existing, updates)
	if err := s.validator.Validate(&model.ListingRequest{
		Title:       merged.Title,
		Description: merged.Description,
		Category:    merged.Category,
		HourlyRate:  merged.HourlyRate,
	}); err != nil {
		s.cfg.Log.Warn("Service listing validation failed",
			"id", existing.ID,
			"title", merged.Title,
			"error", err,
		)
		return nil, apperrors.Validation("Service listing validation failed", map[string]any{
			"errors": err,
		})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if updates.Title != nil {
			if err := s.checkDuplicateTitle(sessCtx, merged.ProviderID, merged.Title, merged.ID); err != nil {
				return err
			}
		}
		return s.repo.Update(sessCtx, merged)
	})
	if err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Failed to update service listing", "id", existing.ID, "error", err)
		return nil, apperrors.Internal("Failed to update service listing", err)
	}

	s.cfg.Log.Info("Service listing updated successfully",
		"id", merged.ID,
		"provider_id", merged.ProviderID,
	)
	return merged, nil
}

func (s *listingService) Delete(ctx context.Context, id, userID string) error {
	listing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.ProviderID != userID {
		return apperrors.Forbidden("Only the provider can delete this service")
	}

	if err := s.repo.SoftDelete(ctx, listing.ID, time.Now()); err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Service", id)
		}
		s.cfg.Log.Error("Failed to delete service listing", "id", id, "error", err)
		return apperrors.Internal("Failed to delete service listing", err)
	}

	s.cfg.Log.Info("Service listing deleted", "id", id, "provider_id", userID)
	return nil
}

// --- Helpers ---

func (s *listingService) load(ctx context.Context, id string) (*model.ServiceListing, error) {
	id = sanitizer.SanitizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, listingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service ID format")
		}
		s.cfg.Log.Error("Failed to get service listing by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve service listing", err)
	}
	return listing, nil
}

// checkDuplicateTitle rejects a title the provider already uses on another
// active listing, ignoring case.
func (s *listingService) checkDuplicateTitle(ctx context.Context, providerID, title, excludeID string) error {
	existing, err := s.repo.FindActive(ctx, repository.ListingFilter{ProviderID: providerID}, maxListingsPerProvider, 0)
	if err != nil {
		return fmt.Errorf("failed to check for duplicates: %w", err)
	}

	for _, other := range existing {
		if other.ID != excludeID && strings.EqualFold(other.Title, title) {
			return apperrors.Conflict(fmt.Sprintf(
				"You already offer a service with this title (id: %s)", other.ID,
			))
		}
	}
	return nil
}

func mergeListingUpdate(existing *model.ServiceListing, updates *model.ListingUpdate) *model.ServiceListing {
	merged := *existing

	if updates.Title != nil {
		merged.Title = *updates.Title
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.Category != nil {
		merged.Category = *updates.Category
	}
	if updates.HourlyRate != nil {
		merged.HourlyRate = *updates.HourlyRate
	}

	return &merged
}

func (s *listingService) sanitizeUpdate(updates *model.ListingUpdate) {
	if updates.Title != nil {
		title := sanitizer.SanitizeTitle(*updates.Title)
		updates.Title = &title
	}
	if updates.Description != nil {
		description := sanitizer.SanitizeMessageText(*updates.Description)
		updates.Description = &description
	}
	if updates.Category != nil {
		category := sanitizer.SanitizeCategory(*updates.Category)
		updates.Category = &category
	}
}

func (s *listingService) sanitize(req *model.ListingRequest) {
	req.Title = sanitizer.SanitizeTitle(req.Title)
	req.Description = sanitizer.SanitizeMessageText(req.Description)
	req.Category = sanitizer.SanitizeCategory(req.Category)
}
