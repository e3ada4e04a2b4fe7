package usecase

import (
	"propdesk-service/internal/livequery"
	"propdesk-service/pkg/logger"
)

// FeedHandler defines the interface for live feed builders
type FeedHandler interface {
	// CanHandle determines if this handler builds the named feed
	CanHandle(name string) bool

	// NewFeed builds an idle feed delivering on b's loop
	NewFeed(b *livequery.Binder) Feed
}

// FeedRouter routes feed names to the handler that builds them
type FeedRouter interface {
	// Register registers a handler
	Register(handler FeedHandler)

	// GetHandler returns the handler for a feed name, or nil
	GetHandler(name string) FeedHandler
}

// Feed names accepted on the stream route.
const (
	FeedVisits    = "visits"
	FeedBookings  = "bookings"
	FeedUnits     = "units"
	FeedSlides    = "slides"
	FeedEvents    = "events"
	FeedAmenities = "amenities"
)

type namedFeedHandler struct {
	name   string
	logger logger.Logger
	build  func(*livequery.Binder, logger.Logger) Feed
}

func (h *namedFeedHandler) CanHandle(name string) bool {
	return name == h.name
}

func (h *namedFeedHandler) NewFeed(b *livequery.Binder) Feed {
	return h.build(b, h.logger)
}

func (h *namedFeedHandler) String() string {
	return h.name
}

// DefaultFeedHandlers returns a handler for every feed the console uses.
func DefaultFeedHandlers(log logger.Logger) []FeedHandler {
	return []FeedHandler{
		&namedFeedHandler{FeedVisits, log, func(b *livequery.Binder, l logger.Logger) Feed { return NewVisitWindow(b, l) }},
		&namedFeedHandler{FeedBookings, log, func(b *livequery.Binder, l logger.Logger) Feed { return NewBookingFanout(b, l) }},
		&namedFeedHandler{FeedUnits, log, func(b *livequery.Binder, l logger.Logger) Feed { return NewUnitsFeed(b, l) }},
		&namedFeedHandler{FeedSlides, log, func(b *livequery.Binder, l logger.Logger) Feed { return NewSlidesFeed(b, l) }},
		&namedFeedHandler{FeedEvents, log, func(b *livequery.Binder, l logger.Logger) Feed { return NewEventsFeed(b, l) }},
		&namedFeedHandler{FeedAmenities, log, func(b *livequery.Binder, l logger.Logger) Feed { return NewAmenitiesFeed(b, l) }},
	}
}
