package usecase

import (
	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/record"
	"propdesk-service/internal/livequery"
	"propdesk-service/pkg/logger"
)

// ListState is what a plain list feed publishes.
type ListState[T any] struct {
	FeedStatus
	Rows []T `json:"rows"`
}

// ListFeed mirrors one ordered query as is.
type ListFeed[T any] struct {
	feedBase
	slot  livequery.Slot
	rows  []T
	query func(propertyID string) livequery.Query
	mapFn livequery.Mapper[T]
}

func newListFeed[T any](b *livequery.Binder, log logger.Logger, query func(string) livequery.Query, mapFn livequery.Mapper[T]) *ListFeed[T] {
	return &ListFeed[T]{
		feedBase: newFeedBase(b, log),
		query:    query,
		mapFn:    mapFn,
	}
}

// NewEventsFeed follows a property's events, soonest first.
func NewEventsFeed(b *livequery.Binder, log logger.Logger) *ListFeed[entity.Event] {
	return newListFeed(b, log.With("feed", "events"), eventsQuery, record.Event)
}

// NewAmenitiesFeed follows a property's amenities by name.
func NewAmenitiesFeed(b *livequery.Binder, log logger.Logger) *ListFeed[entity.Amenity] {
	return newListFeed(b, log.With("feed", "amenities"), amenitiesQuery, record.Amenity)
}

// SetProperty implements Feed.
func (f *ListFeed[T]) SetProperty(propertyID string) {
	f.slot.Cancel()
	f.reset(propertyID)
	f.rows = nil
	if propertyID != "" {
		q := f.query(propertyID)
		f.slot.Rebind(func() livequery.CancelFunc {
			return livequery.Bind(f.binder, q, f.mapFn, f.onRows, f.failed)
		})
	}
	f.notify()
}

func (f *ListFeed[T]) onRows(rows []T) {
	f.rows = rows
	f.loaded()
	f.notify()
}

// State returns the published view.
func (f *ListFeed[T]) State() ListState[T] {
	rows := f.rows
	if rows == nil {
		rows = []T{}
	}
	return ListState[T]{FeedStatus: f.status(), Rows: rows}
}

// Snapshot implements Feed.
func (f *ListFeed[T]) Snapshot() interface{} {
	return f.State()
}

// Close implements Feed.
func (f *ListFeed[T]) Close() {
	f.slot.Cancel()
}
