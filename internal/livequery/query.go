package livequery

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// SortDirection follows the Mongo convention.
type SortDirection int

const (
	Asc  SortDirection = 1
	Desc SortDirection = -1
)

// SortField is one ordering key.
type SortField struct {
	Field string
	Dir   SortDirection
}

// Query describes a live subscription: which collection, which slice of it
// (equality scope), in what order and how many rows.
type Query struct {
	Collection string
	Scope      bson.D
	Sort       []SortField
	// Limit caps the number of rows; 0 means no cap.
	Limit int
}

func (q Query) String() string {
	parts := make([]string, 0, len(q.Scope))
	for _, e := range q.Scope {
		parts = append(parts, fmt.Sprintf("%s=%v", e.Key, e.Value))
	}
	s := q.Collection
	if len(parts) > 0 {
		s += "[" + strings.Join(parts, ",") + "]"
	}
	if q.Limit > 0 {
		s += fmt.Sprintf(" limit %d", q.Limit)
	}
	return s
}

// WithLimit returns a copy with a new row cap.
func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

// Document is one row of a snapshot.
type Document struct {
	ID  string
	Raw bson.Raw
}

// NewDocument marshals v into a Document. Mostly useful in tests and fakes.
func NewDocument(id string, v interface{}) (Document, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Raw: raw}, nil
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v interface{}) error {
	return bson.Unmarshal(d.Raw, v)
}

// CancelFunc ends a subscription. It is idempotent, and once it returns the
// source will not invoke the subscription's callbacks again.
type CancelFunc func()

// Source establishes live subscriptions. onSnapshot receives the full ordered
// result every time the underlying data changes; onError is called at most
// once, after which the subscription is dead. Callbacks for one subscription
// are never concurrent with each other, but may run on any goroutine.
type Source interface {
	Subscribe(ctx context.Context, q Query, onSnapshot func([]Document), onError func(error)) CancelFunc
}

// documentID renders an _id value as a string key.
func documentID(rv bson.RawValue) string {
	switch rv.Type {
	case bsontype.String:
		return rv.StringValue()
	case bsontype.ObjectID:
		return rv.ObjectID().Hex()
	case 0:
		return ""
	default:
		return strings.Trim(rv.String(), `"`)
	}
}
