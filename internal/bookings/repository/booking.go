package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "servicehub/internal/bookings/errors"
	"servicehub/pkg/config"
	mongotx "servicehub/pkg/db/mongo"
	"servicehub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"

	RoleCustomer = "customer"
	RoleProvider = "provider"
)

// ListFilter selects the bookings a user takes part in. An empty Role
// matches both sides; an empty Status matches every status.
type ListFilter struct {
	UserID string
	Role   string
	Status model.BookingStatus
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindActiveByServiceAndDate(ctx context.Context, serviceID, date, excludeID string) ([]*model.Booking, error)
	FindByParty(ctx context.Context, filter ListFilter, limit int, offset int64) ([]*model.Booking, error)
	CountByParty(ctx context.Context, filter ListFilter) (int64, error)
	UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus, at time.Time) (*model.Booking, error)
	AppendMessage(ctx context.Context, id string, msg model.Message) error
	ProviderStats(ctx context.Context, providerID string) (*model.ProviderStats, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func activeStatuses() bson.M {
	return bson.M{"$in": model.ActiveStatuses}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if booking.Messages == nil {
		booking.Messages = []model.Message{}
	}

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// FindActiveByServiceAndDate returns the pending and confirmed bookings that
// occupy slots of serviceID on date. Served by the (service_id, date) index.
func (r *mongoBookingRepository) FindActiveByServiceAndDate(ctx context.Context, serviceID, date, excludeID string) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"service_id": serviceID,
		"date":       date,
		"status":     activeStatuses(),
	}
	if excludeID != "" {
		oid, err := objectID(excludeID)
		if err != nil {
			return nil, err
		}
		filter["_id"] = bson.M{"$ne": oid}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "time", Value: 1}}).
		SetProjection(bson.M{"messages": 0})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings for slot: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func buildPartyFilter(f ListFilter) bson.M {
	filter := bson.M{}
	switch f.Role {
	case RoleCustomer:
		filter["customer_id"] = f.UserID
	case RoleProvider:
		filter["provider_id"] = f.UserID
	default:
		filter["$or"] = bson.A{
			bson.M{"customer_id": f.UserID},
			bson.M{"provider_id": f.UserID},
		}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

func (r *mongoBookingRepository) FindByParty(ctx context.Context, f ListFilter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildPartyFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*model.Booking, 0)
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) CountByParty(ctx context.Context, f ListFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildPartyFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// UpdateStatus moves a booking from one status to another only if it is
// still in `from`. Returns ErrStatusChanged when the precondition fails.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus, at time.Time) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid, "status": from}
	update := bson.M{"$set": bson.M{
		"status":     to,
		"updated_at": at.UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrStatusChanged
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return &booking, nil
}

// AppendMessage pushes msg onto the thread of a non-terminal booking.
func (r *mongoBookingRepository) AppendMessage(ctx context.Context, id string, msg model.Message) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "status": activeStatuses()}
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"updated_at": msg.Timestamp},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrStatusChanged
	}
	return nil
}

type statusTotals struct {
	Status   model.BookingStatus `bson:"_id"`
	Count    int64               `bson:"count"`
	Earnings float64             `bson:"earnings"`
}

func (r *mongoBookingRepository) ProviderStats(ctx context.Context, providerID string) (*model.ProviderStats, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"provider_id": providerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$status",
			"count":    bson.M{"$sum": 1},
			"earnings": bson.M{"$sum": "$total_price"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate provider stats: %w", err)
	}
	defer cursor.Close(ctx)

	var totals []statusTotals
	if err = cursor.All(ctx, &totals); err != nil {
		return nil, fmt.Errorf("failed to decode provider stats: %w", err)
	}

	stats := &model.ProviderStats{}
	for _, t := range totals {
		switch t.Status {
		case model.StatusCompleted:
			stats.CompletedCount = t.Count
			stats.TotalEarnings = t.Earnings
		case model.StatusPending:
			stats.PendingCount = t.Count
		case model.StatusConfirmed:
			stats.ConfirmedCount = t.Count
		}
	}
	return stats, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
