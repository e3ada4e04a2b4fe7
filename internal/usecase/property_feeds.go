package usecase

import (
	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/record"
	"propdesk-service/internal/livequery"
	"propdesk-service/pkg/logger"
)

// UnitsState is what the units feed publishes. HasUnits is nil until the
// property document has been seen.
type UnitsState struct {
	FeedStatus
	HasUnits *bool         `json:"hasUnits"`
	Rows     []entity.Unit `json:"rows"`
}

// UnitsFeed binds the units list only while the property's haveUnits flag
// is set.
type UnitsFeed struct {
	feedBase
	property livequery.Slot
	units    livequery.Slot
	hasUnits *bool
	rows     []entity.Unit
}

// NewUnitsFeed creates an idle units feed.
func NewUnitsFeed(b *livequery.Binder, log logger.Logger) *UnitsFeed {
	return &UnitsFeed{feedBase: newFeedBase(b, log.With("feed", "units"))}
}

// SetProperty implements Feed.
func (f *UnitsFeed) SetProperty(propertyID string) {
	f.Close()
	f.reset(propertyID)
	f.hasUnits = nil
	f.rows = nil
	if propertyID != "" {
		q := propertyQuery(propertyID)
		f.property.Rebind(func() livequery.CancelFunc {
			return livequery.Bind(f.binder, q, record.Property, f.onProperty, f.failed)
		})
	}
	f.notify()
}

func (f *UnitsFeed) onProperty(props []entity.Property) {
	has := len(props) > 0 && props[0].HaveUnits
	f.hasUnits = &has

	if !has {
		f.units.Cancel()
		f.rows = nil
		f.loaded()
		f.notify()
		return
	}
	if f.units.Active() {
		return
	}
	q := unitsQuery(f.propertyID)
	f.units.Rebind(func() livequery.CancelFunc {
		return livequery.Bind(f.binder, q, record.Unit, f.onUnits, f.failed)
	})
	f.notify()
}

func (f *UnitsFeed) onUnits(rows []entity.Unit) {
	f.rows = rows
	f.loaded()
	f.notify()
}

// State returns the published view.
func (f *UnitsFeed) State() UnitsState {
	rows := f.rows
	if rows == nil {
		rows = []entity.Unit{}
	}
	return UnitsState{FeedStatus: f.status(), HasUnits: f.hasUnits, Rows: rows}
}

// Snapshot implements Feed.
func (f *UnitsFeed) Snapshot() interface{} {
	return f.State()
}

// Close implements Feed.
func (f *UnitsFeed) Close() {
	f.units.Cancel()
	f.property.Cancel()
}

// SlidesState is what the slideshow feed publishes.
type SlidesState struct {
	FeedStatus
	Rows []entity.Slide `json:"rows"`
}

// SlidesFeed follows the slideshow URL list on the property document.
type SlidesFeed struct {
	feedBase
	slot livequery.Slot
	rows []entity.Slide
}

// NewSlidesFeed creates an idle slideshow feed.
func NewSlidesFeed(b *livequery.Binder, log logger.Logger) *SlidesFeed {
	return &SlidesFeed{feedBase: newFeedBase(b, log.With("feed", "slides"))}
}

// SetProperty implements Feed.
func (f *SlidesFeed) SetProperty(propertyID string) {
	f.slot.Cancel()
	f.reset(propertyID)
	f.rows = nil
	if propertyID != "" {
		q := propertyQuery(propertyID)
		f.slot.Rebind(func() livequery.CancelFunc {
			return livequery.Bind(f.binder, q, record.Property, f.onProperty, f.failed)
		})
	}
	f.notify()
}

func (f *SlidesFeed) onProperty(props []entity.Property) {
	f.rows = []entity.Slide{}
	if len(props) > 0 {
		for _, url := range props[0].SlideURLs {
			f.rows = append(f.rows, entity.SlideFromURL(url))
		}
	}
	f.loaded()
	f.notify()
}

// State returns the published view.
func (f *SlidesFeed) State() SlidesState {
	rows := f.rows
	if rows == nil {
		rows = []entity.Slide{}
	}
	return SlidesState{FeedStatus: f.status(), Rows: rows}
}

// Snapshot implements Feed.
func (f *SlidesFeed) Snapshot() interface{} {
	return f.State()
}

// Close implements Feed.
func (f *SlidesFeed) Close() {
	f.slot.Cancel()
}
