package repository

import (
	"context"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/record"
	"propdesk-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepository implements the BookingRepository interface
type MongoBookingRepository struct {
	collection *mongo.Collection
}

// NewMongoBookingRepository creates a new MongoDB booking repository
func NewMongoBookingRepository(db *mongo.Database) repository.BookingRepository {
	collection := db.Collection(record.Bookings)

	// Serves the per-amenity live query
	ensureIndexes(collection, mongo.IndexModel{
		Keys: bson.D{
			{Key: "propertyId", Value: 1},
			{Key: "amenityId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
	})

	return &MongoBookingRepository{
		collection: collection,
	}
}

// Create inserts a booking. ID, CreatedAt and a pending status are filled
// in when absent.
func (r *MongoBookingRepository) Create(ctx context.Context, b *entity.Booking) error {
	if b.ID == "" {
		b.ID = newID()
	}
	if b.CreatedAt == nil {
		now := time.Now().UTC()
		b.CreatedAt = &now
	}
	b.Status = b.Status.OrPending()

	_, err := r.collection.InsertOne(ctx, bson.D{
		{Key: "_id", Value: b.ID},
		{Key: "propertyId", Value: b.PropertyID},
		{Key: "amenityId", Value: b.AmenityID},
		{Key: "residentName", Value: b.ResidentName},
		{Key: "unitLabel", Value: b.UnitLabel},
		{Key: "unitId", Value: b.UnitID},
		{Key: "bookedDate", Value: b.BookedDate},
		{Key: "startAt", Value: b.StartAt},
		{Key: "endAt", Value: b.EndAt},
		{Key: "reason", Value: b.Notes},
		{Key: "guestCount", Value: b.GuestCount},
		{Key: "status", Value: string(b.Status)},
		{Key: "createdAt", Value: *b.CreatedAt},
		{Key: "createdBy", Value: b.CreatedBy},
	})
	return err
}

// UpdateStatus sets the review status of one booking
func (r *MongoBookingRepository) UpdateStatus(ctx context.Context, propertyID string, key entity.BookingKey, status entity.BookingStatus) error {
	filter := bson.M{
		"_id":        key.BookingID,
		"propertyId": propertyID,
		"amenityId":  key.AmenityID,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    string(status),
			"updatedAt": time.Now().UTC(),
		},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	return notFoundIfUnmatched(res, "booking "+key.BookingID)
}
