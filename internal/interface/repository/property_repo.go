package repository

import (
	"context"
	"errors"
	"fmt"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/record"
	"propdesk-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const slidesField = "slideShowImageUrls"

// MongoPropertyRepository implements the PropertyRepository interface
type MongoPropertyRepository struct {
	collection *mongo.Collection
}

// NewMongoPropertyRepository creates a new MongoDB property repository
func NewMongoPropertyRepository(db *mongo.Database) repository.PropertyRepository {
	return &MongoPropertyRepository{
		collection: db.Collection(record.Properties),
	}
}

// FindByID finds a property by ID
func (r *MongoPropertyRepository) FindByID(ctx context.Context, id string) (*entity.Property, error) {
	doc, err := findDocument(ctx, r.collection, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	p, err := record.Property(doc)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindSummaries returns id and display name for each id, in input order.
// Ids without a document are listed under their id.
func (r *MongoPropertyRepository) FindSummaries(ctx context.Context, ids []string) ([]entity.PropertySummary, error) {
	if len(ids) == 0 {
		return []entity.PropertySummary{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID   string `bson:"_id"`
		Name string `bson:"name"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(docs))
	for _, d := range docs {
		names[d.ID] = d.Name
	}

	out := make([]entity.PropertySummary, 0, len(ids))
	for _, id := range ids {
		name := names[id]
		if name == "" {
			name = id
		}
		out = append(out, entity.PropertySummary{ID: id, Name: name})
	}
	return out, nil
}

// SlideURLs returns the stored slideshow list; empty when the property has none.
func (r *MongoPropertyRepository) SlideURLs(ctx context.Context, id string) ([]string, error) {
	var doc struct {
		URLs []string `bson:"slideShowImageUrls"`
	}
	err := r.collection.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{slidesField: 1})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []string{}, nil
		}
		return nil, err
	}
	if doc.URLs == nil {
		return []string{}, nil
	}
	return doc.URLs, nil
}

// AddSlideURLs appends urls as a set union, only while the stored list leaves
// room for all of them under limit. A full list reports ErrSlideLimit.
func (r *MongoPropertyRepository) AddSlideURLs(ctx context.Context, id string, urls []string, limit int) error {
	if len(urls) == 0 {
		return nil
	}
	update := bson.M{
		"$addToSet": bson.M{slidesField: bson.M{"$each": urls}},
	}
	filter := bson.M{
		"_id": id,
		"$expr": bson.M{"$lte": bson.A{
			bson.M{"$size": bson.M{"$ifNull": bson.A{"$" + slidesField, bson.A{}}}},
			limit - len(urls),
		}},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("property %s: %w", id, entity.ErrSlideLimit)
	}
	if len(urls) > limit {
		return fmt.Errorf("property %s: %w", id, entity.ErrSlideLimit)
	}
	// No property document yet; the first upload creates it.
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	return err
}

// RemoveSlideURL removes every occurrence of url
func (r *MongoPropertyRepository) RemoveSlideURL(ctx context.Context, id string, url string) error {
	update := bson.M{
		"$pull": bson.M{slidesField: url},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	return err
}

// SeedReasons writes the reason taxonomies under their plural field names
func (r *MongoPropertyRepository) SeedReasons(ctx context.Context, id string, seed repository.ReasonSeed) error {
	update := reasonUpdate(seed)
	if len(update) == 0 {
		return nil
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	return notFoundIfUnmatched(res, "property "+id)
}

func reasonUpdate(seed repository.ReasonSeed) bson.M {
	set := bson.M{}
	unset := bson.M{}
	for _, f := range record.ReasonFields {
		if m, ok := seed.Maps[f.Key]; ok {
			set[f.Field] = m
		}
		if seed.PruneLegacy && f.Legacy != "" {
			unset[f.Legacy] = ""
		}
	}
	if len(seed.StaffDepartments) > 0 {
		set["staffDepartments"] = seed.StaffDepartments
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}
