package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	listingserrors "servicehub/internal/listings/errors"
	"servicehub/pkg/config"
	mongotx "servicehub/pkg/db/mongo"
	"servicehub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Services"
)

// ListingFilter narrows active listings. Empty fields match everything;
// the rate bounds are inclusive.
type ListingFilter struct {
	ProviderID string
	Category   string
	MinRate    *float64
	MaxRate    *float64
}

type ListingRepository interface {
	Create(ctx context.Context, listing *model.ServiceListing) error
	FindByID(ctx context.Context, id string) (*model.ServiceListing, error)
	FindActive(ctx context.Context, filter ListingFilter, limit int, offset int64) ([]*model.ServiceListing, error)
	CountActive(ctx context.Context, filter ListingFilter) (int64, error)
	Update(ctx context.Context, listing *model.ServiceListing) error
	SoftDelete(ctx context.Context, id string, at time.Time) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoListingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoListingRepository(cfg *config.Config) ListingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoListingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func activeFilter(f ListingFilter) bson.M {
	filter := bson.M{"status": model.ListingActive}
	if f.ProviderID != "" {
		filter["provider_id"] = f.ProviderID
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.MinRate != nil || f.MaxRate != nil {
		rate := bson.M{}
		if f.MinRate != nil {
			rate["$gte"] = *f.MinRate
		}
		if f.MaxRate != nil {
			rate["$lte"] = *f.MaxRate
		}
		filter["hourly_rate"] = rate
	}
	return filter
}

func (r *mongoListingRepository) Create(ctx context.Context, listing *model.ServiceListing) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	listing.CreatedAt = now
	listing.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, listing)
	if err != nil {
		return fmt.Errorf("failed to create service listing: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		listing.ID = oid.Hex()
	}
	return nil
}

// FindByID returns the listing whatever its status.
func (r *mongoListingRepository) FindByID(ctx context.Context, id string) (*model.ServiceListing, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, id)
	}

	var listing model.ServiceListing
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", listingserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find service listing: %w", err)
	}
	return &listing, nil
}

func (r *mongoListingRepository) FindActive(ctx context.Context, f ListingFilter, limit int, offset int64) ([]*model.ServiceListing, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, activeFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query service listings: %w", err)
	}
	defer cursor.Close(ctx)

	listings := make([]*model.ServiceListing, 0)
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode service listings: %w", err)
	}
	return listings, nil
}

func (r *mongoListingRepository) CountActive(ctx context.Context, f ListingFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, activeFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count service listings: %w", err)
	}
	return count, nil
}

// Update rewrites the editable fields of an active listing.
func (r *mongoListingRepository) Update(ctx context.Context, listing *model.ServiceListing) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(listing.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, listing.ID)
	}

	listing.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": model.ListingActive},
		bson.M{"$set": bson.M{
			"title":       listing.Title,
			"description": listing.Description,
			"category":    listing.Category,
			"hourly_rate": listing.HourlyRate,
			"updated_at":  listing.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update service listing: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", listingserrors.ErrNotFound, listing.ID)
	}
	return nil
}

// SoftDelete marks an active listing deleted. Existing bookings keep
// pointing at it.
func (r *mongoListingRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": model.ListingActive},
		bson.M{"$set": bson.M{"status": model.ListingDeleted, "updated_at": at.UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to delete service listing: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", listingserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoListingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
