package repository

import (
	"context"
	"errors"
	"fmt"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/livequery"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newID mints a document id. Ids are stored as hex strings so they can be
// used in URLs unchanged.
func newID() string {
	return primitive.NewObjectID().Hex()
}

// findDocument loads one document in the shape the record mappers take.
func findDocument(ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOneOptions) (livequery.Document, error) {
	raw, err := coll.FindOne(ctx, filter, opts...).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return livequery.Document{}, fmt.Errorf("%s: %w", coll.Name(), entity.ErrNotFound)
		}
		return livequery.Document{}, err
	}

	id, _ := raw.Lookup("_id").StringValueOK()
	return livequery.Document{ID: id, Raw: raw}, nil
}

// ensureIndexes creates indexes at construction. Failures are not fatal; the
// queries still work without them.
func ensureIndexes(coll *mongo.Collection, models ...mongo.IndexModel) {
	coll.Indexes().CreateMany(context.Background(), models)
}

func scoped(propertyID, id string) bson.M {
	return bson.M{"_id": id, "propertyId": propertyID}
}

func notFoundIfUnmatched(res *mongo.UpdateResult, what string) error {
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", what, entity.ErrNotFound)
	}
	return nil
}
