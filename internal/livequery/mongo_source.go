package livequery

import (
	"context"
	"fmt"
	"sync"

	"propdesk-service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSource serves live queries from MongoDB. Each subscription opens a
// change stream on the collection and re-runs the query after every change,
// so consumers always get the full result. Change streams need a replica set.
type MongoSource struct {
	db     *mongo.Database
	logger logger.Logger
}

// NewMongoSource creates a source over db.
func NewMongoSource(db *mongo.Database, logger logger.Logger) *MongoSource {
	return &MongoSource{db: db, logger: logger}
}

// Subscribe implements Source.
func (s *MongoSource) Subscribe(ctx context.Context, q Query, onSnapshot func([]Document), onError func(error)) CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := s.run(ctx, q, onSnapshot); err != nil && ctx.Err() == nil {
			onError(err)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

func (s *MongoSource) run(ctx context.Context, q Query, onSnapshot func([]Document)) error {
	coll := s.db.Collection(q.Collection)

	// Open the stream before the first read so no change slips between them.
	stream, err := coll.Watch(ctx, changePipeline(q), options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", q.Collection, err)
	}
	defer stream.Close(context.Background())

	if err := s.deliver(ctx, coll, q, onSnapshot); err != nil {
		return err
	}

	for stream.Next(ctx) {
		// Collapse a burst of events into one re-read.
		if stream.RemainingBatchLength() > 0 {
			continue
		}
		if err := s.deliver(ctx, coll, q, onSnapshot); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("change stream on %s: %w", q.Collection, err)
	}
	return nil
}

func (s *MongoSource) deliver(ctx context.Context, coll *mongo.Collection, q Query, onSnapshot func([]Document)) error {
	opts := options.Find()
	if len(q.Sort) > 0 {
		opts.SetSort(sortDoc(q.Sort))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := coll.Find(ctx, scopeFilter(q), opts)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", q.Collection, err)
	}
	defer cursor.Close(ctx)

	docs := make([]Document, 0)
	for cursor.Next(ctx) {
		raw := make(bson.Raw, len(cursor.Current))
		copy(raw, cursor.Current)
		docs = append(docs, Document{ID: documentID(raw.Lookup("_id")), Raw: raw})
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", q.Collection, err)
	}

	onSnapshot(docs)
	return nil
}

func scopeFilter(q Query) bson.D {
	if q.Scope == nil {
		return bson.D{}
	}
	return q.Scope
}

func sortDoc(fields []SortField) bson.D {
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		d = append(d, bson.E{Key: f.Field, Value: int(f.Dir)})
	}
	return d
}

// changePipeline keeps inserts/updates inside the scope plus every delete,
// since deleted documents carry no body to match on. Any delete in the
// collection therefore re-reads every subscriber of it.
func changePipeline(q Query) mongo.Pipeline {
	inScope := bson.D{}
	for _, e := range q.Scope {
		inScope = append(inScope, bson.E{Key: "fullDocument." + e.Key, Value: e.Value})
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"delete", "drop", "invalidate"}}}}},
			inScope,
		}}}}},
	}
}
