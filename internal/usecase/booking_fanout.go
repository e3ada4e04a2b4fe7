package usecase

import (
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/record"
	"propdesk-service/internal/filter"
	"propdesk-service/internal/livequery"
	"propdesk-service/pkg/logger"
	"propdesk-service/pkg/utils"
)

// BookingRow is a booking with its display labels.
type BookingRow struct {
	entity.Booking
	StartLabel string `json:"startLabel"`
	EndLabel   string `json:"endLabel"`
}

// BookingsState is what the bookings feed publishes.
type BookingsState struct {
	FeedStatus
	Rows   []BookingRow     `json:"rows"`
	Total  int              `json:"total"`
	Status filter.StatusKey `json:"status"`
}

// BookingFanout merges the bookings of every amenity of a property into one
// newest-first list. One parent subscription watches the amenity set; each
// amenity snapshot cancels every child subscription and binds one per
// amenity again. Rows are grouped by amenity so a child snapshot replaces
// exactly the rows it owns.
type BookingFanout struct {
	feedBase
	parent   livequery.Slot
	children map[string]livequery.CancelFunc

	amenities []entity.Amenity
	rows      map[string][]entity.Booking
	statusKey filter.StatusKey
}

// NewBookingFanout creates an idle fan-out.
func NewBookingFanout(b *livequery.Binder, log logger.Logger) *BookingFanout {
	return &BookingFanout{
		feedBase:  newFeedBase(b, log.With("feed", "bookings")),
		children:  make(map[string]livequery.CancelFunc),
		rows:      make(map[string][]entity.Booking),
		statusKey: filter.StatusAll,
	}
}

// SetProperty tears everything down and binds the amenity set of propertyID.
func (f *BookingFanout) SetProperty(propertyID string) {
	f.teardown()
	f.reset(propertyID)
	f.amenities = nil
	f.rows = make(map[string][]entity.Booking)
	if propertyID != "" {
		q := amenitiesQuery(propertyID)
		f.parent.Rebind(func() livequery.CancelFunc {
			return livequery.Bind(f.binder, q, record.Amenity, f.onAmenities, f.failed)
		})
	}
	f.notify()
}

// SetFilter selects the status shown in published rows.
func (f *BookingFanout) SetFilter(key string) {
	f.statusKey = filter.ParseStatusKey(key)
	f.notify()
}

func (f *BookingFanout) onAmenities(amenities []entity.Amenity) {
	f.cancelChildren()

	present := make(map[string]bool, len(amenities))
	for _, a := range amenities {
		present[a.ID] = true
	}
	for id := range f.rows {
		if !present[id] {
			delete(f.rows, id)
		}
	}
	f.amenities = amenities

	if len(amenities) == 0 {
		f.loaded()
		f.notify()
		return
	}

	for _, a := range amenities {
		amenity := a
		f.children[amenity.ID] = livequery.Bind(f.binder, bookingsQuery(f.propertyID, amenity.ID), record.Booking,
			func(rows []entity.Booking) { f.onBookings(amenity, rows) },
			f.failed,
		)
	}
	f.logger.Debug("Booking children rebound", "amenities", len(amenities))
	f.notify()
}

func (f *BookingFanout) onBookings(amenity entity.Amenity, rows []entity.Booking) {
	for i := range rows {
		rows[i].AmenityID = amenity.ID
		rows[i].AmenityName = amenity.Name
	}
	f.rows[amenity.ID] = rows
	f.loaded()
	f.notify()
}

// Rows returns every loaded booking, newest first, missing creation times
// last.
func (f *BookingFanout) Rows() []entity.Booking {
	var out []entity.Booking
	for _, a := range f.amenities {
		out = append(out, f.rows[a.ID]...)
	}
	if out == nil {
		return []entity.Booking{}
	}
	newestFirst(out, func(b entity.Booking) *time.Time { return b.CreatedAt })
	return out
}

// ChildCount reports the number of live per-amenity subscriptions.
func (f *BookingFanout) ChildCount() int {
	return len(f.children)
}

// State returns the published view with the status filter applied.
func (f *BookingFanout) State() BookingsState {
	all := f.Rows()
	visible := filter.BookingsByStatus(all, f.statusKey)
	rows := make([]BookingRow, 0, len(visible))
	for _, b := range visible {
		rows = append(rows, BookingRow{
			Booking:    b,
			StartLabel: utils.FormatTimeLabel(b.StartAt),
			EndLabel:   utils.FormatTimeLabel(b.EndAt),
		})
	}
	return BookingsState{
		FeedStatus: f.status(),
		Rows:       rows,
		Total:      len(all),
		Status:     f.statusKey,
	}
}

// Snapshot implements Feed.
func (f *BookingFanout) Snapshot() interface{} {
	return f.State()
}

// Close implements Feed.
func (f *BookingFanout) Close() {
	f.teardown()
}

func (f *BookingFanout) teardown() {
	f.parent.Cancel()
	f.cancelChildren()
}

func (f *BookingFanout) cancelChildren() {
	for id, cancel := range f.children {
		cancel()
		delete(f.children, id)
	}
}
