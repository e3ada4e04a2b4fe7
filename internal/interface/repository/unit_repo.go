package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/record"
	"propdesk-service/internal/domain/repository"
	"propdesk-service/internal/livequery"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUnitRepository implements the UnitRepository interface
type MongoUnitRepository struct {
	collection *mongo.Collection
}

// NewMongoUnitRepository creates a new MongoDB unit repository
func NewMongoUnitRepository(db *mongo.Database) repository.UnitRepository {
	collection := db.Collection(record.Units)

	ensureIndexes(collection, mongo.IndexModel{
		Keys: bson.D{{Key: "propertyId", Value: 1}, {Key: "unitLabel", Value: 1}},
	})

	return &MongoUnitRepository{
		collection: collection,
	}
}

// Create inserts a unit
func (r *MongoUnitRepository) Create(ctx context.Context, u *entity.Unit) error {
	if u.ID == "" {
		u.ID = newID()
	}
	now := time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, bson.D{
		{Key: "_id", Value: u.ID},
		{Key: "propertyId", Value: u.PropertyID},
		{Key: "unitLabel", Value: u.UnitLabel},
		{Key: "residentNames", Value: u.ResidentNames},
		{Key: "active", Value: u.Active},
		{Key: "notes", Value: u.Notes},
		{Key: "createdAt", Value: now},
		{Key: "updatedAt", Value: now},
	})
	return err
}

// Update overwrites the editable fields of a unit and refreshes u from the
// stored document. The active flag is only changed through ToggleActive.
func (r *MongoUnitRepository) Update(ctx context.Context, u *entity.Unit) error {
	update := bson.M{
		"$set": bson.M{
			"unitLabel":     u.UnitLabel,
			"residentNames": u.ResidentNames,
			"notes":         u.Notes,
			"updatedAt":     time.Now().UTC(),
		},
	}
	raw, err := r.collection.FindOneAndUpdate(ctx, scoped(u.PropertyID, u.ID), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("unit %s: %w", u.ID, entity.ErrNotFound)
		}
		return err
	}

	stored, err := record.Unit(livequery.Document{ID: u.ID, Raw: raw})
	if err != nil {
		return err
	}
	*u = stored
	return nil
}

// ToggleActive flips the active flag server-side and returns the new value
func (r *MongoUnitRepository) ToggleActive(ctx context.Context, propertyID, unitID string) (bool, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"active":    bson.M{"$not": bson.A{"$active"}},
			"updatedAt": "$$NOW",
		}}},
	}

	var doc struct {
		Active bool `bson:"active"`
	}
	err := r.collection.FindOneAndUpdate(ctx, scoped(propertyID, unitID), pipeline,
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"active": 1})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, fmt.Errorf("unit %s: %w", unitID, entity.ErrNotFound)
		}
		return false, err
	}
	return doc.Active, nil
}
