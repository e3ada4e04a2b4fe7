package repository

import (
	"context"
	"fmt"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/record"
	"propdesk-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoEventRepository implements the EventRepository interface
type MongoEventRepository struct {
	collection *mongo.Collection
}

// NewMongoEventRepository creates a new MongoDB event repository
func NewMongoEventRepository(db *mongo.Database) repository.EventRepository {
	collection := db.Collection(record.Events)

	ensureIndexes(collection, mongo.IndexModel{
		Keys: bson.D{{Key: "propertyId", Value: 1}, {Key: "startAt", Value: 1}},
	})

	return &MongoEventRepository{
		collection: collection,
	}
}

// FindByID finds an event of a property
func (r *MongoEventRepository) FindByID(ctx context.Context, propertyID, eventID string) (*entity.Event, error) {
	doc, err := findDocument(ctx, r.collection, scoped(propertyID, eventID))
	if err != nil {
		return nil, err
	}
	e, err := record.Event(doc)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an event
func (r *MongoEventRepository) Create(ctx context.Context, e *entity.Event) error {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.CreatedAt == nil {
		now := time.Now().UTC()
		e.CreatedAt = &now
	}

	doc := eventFields(e)
	doc = append(bson.D{{Key: "_id", Value: e.ID}, {Key: "propertyId", Value: e.PropertyID}}, doc...)
	doc = append(doc,
		bson.E{Key: "createdAt", Value: *e.CreatedAt},
		bson.E{Key: "createdByStaffId", Value: e.CreatedByStaffID},
	)
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

// Update overwrites the editable fields of an event
func (r *MongoEventRepository) Update(ctx context.Context, e *entity.Event) error {
	set := append(eventFields(e), bson.E{Key: "updatedAt", Value: time.Now().UTC()})
	res, err := r.collection.UpdateOne(ctx, scoped(e.PropertyID, e.ID), bson.M{"$set": set})
	if err != nil {
		return err
	}
	return notFoundIfUnmatched(res, "event "+e.ID)
}

// Delete removes an event
func (r *MongoEventRepository) Delete(ctx context.Context, propertyID, eventID string) error {
	res, err := r.collection.DeleteOne(ctx, scoped(propertyID, eventID))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("event %s: %w", eventID, entity.ErrNotFound)
	}
	return nil
}

func eventFields(e *entity.Event) bson.D {
	var startAt interface{}
	if e.StartAt != nil {
		startAt = e.StartAt.UTC()
	}
	return bson.D{
		{Key: "title", Value: e.Title},
		{Key: "description", Value: e.Description},
		{Key: "status", Value: e.Status},
		{Key: "startAt", Value: startAt},
		{Key: "signUpLink", Value: e.SignUpLink},
		{Key: "location", Value: e.Location},
		{Key: "imageUrl", Value: e.ImageURL},
	}
}
