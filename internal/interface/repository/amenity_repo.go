package repository

import (
	"context"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/record"
	"propdesk-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAmenityRepository implements the AmenityRepository interface
type MongoAmenityRepository struct {
	collection *mongo.Collection
}

// NewMongoAmenityRepository creates a new MongoDB amenity repository
func NewMongoAmenityRepository(db *mongo.Database) repository.AmenityRepository {
	collection := db.Collection(record.Amenities)

	ensureIndexes(collection, mongo.IndexModel{
		Keys: bson.D{{Key: "propertyId", Value: 1}, {Key: "name", Value: 1}},
	})

	return &MongoAmenityRepository{
		collection: collection,
	}
}

// FindByID finds an amenity of a property
func (r *MongoAmenityRepository) FindByID(ctx context.Context, propertyID, amenityID string) (*entity.Amenity, error) {
	doc, err := findDocument(ctx, r.collection, scoped(propertyID, amenityID))
	if err != nil {
		return nil, err
	}
	a, err := record.Amenity(doc)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
