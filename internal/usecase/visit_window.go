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

// Visit window sizing.
const (
	InitialVisitLimit = 30
	VisitPageSize     = 10
)

// VisitRow is a visit with its display labels.
type VisitRow struct {
	entity.Visit
	RoleLabel string `json:"roleLabel"`
}

// VisitsState is what the visits feed publishes.
type VisitsState struct {
	FeedStatus
	Rows        []VisitRow       `json:"rows"`
	Total       int              `json:"total"`
	Limit       int              `json:"limit"`
	CanLoadMore bool             `json:"canLoadMore"`
	Window      filter.WindowKey `json:"window"`
}

// VisitWindow is the newest-first visit log with a growing row ceiling.
// CanLoadMore is true exactly when the last snapshot filled the ceiling.
type VisitWindow struct {
	feedBase
	slot   livequery.Slot
	limit  int
	rows   []entity.Visit
	window filter.WindowKey
	now    func() time.Time
}

// NewVisitWindow creates an idle visit window.
func NewVisitWindow(b *livequery.Binder, log logger.Logger) *VisitWindow {
	return &VisitWindow{
		feedBase: newFeedBase(b, log.With("feed", "visits")),
		limit:    InitialVisitLimit,
		window:   filter.WindowToday,
		now:      time.Now,
	}
}

// SetProperty resets the ceiling, drops loaded rows and rebinds.
func (w *VisitWindow) SetProperty(propertyID string) {
	w.slot.Cancel()
	w.reset(propertyID)
	w.limit = InitialVisitLimit
	w.rows = nil
	if propertyID != "" {
		w.bind()
	}
	w.notify()
}

// LoadMore raises the ceiling by one page. Rows already loaded stay visible
// until the wider snapshot arrives.
func (w *VisitWindow) LoadMore() {
	if w.propertyID == "" {
		return
	}
	w.limit += VisitPageSize
	w.loading = true
	w.bind()
	w.notify()
}

// SetFilter selects the time window applied to published rows.
func (w *VisitWindow) SetFilter(key string) {
	w.window = filter.ParseWindowKey(key)
	w.notify()
}

// Limit is the current row ceiling.
func (w *VisitWindow) Limit() int {
	return w.limit
}

// CanLoadMore reports whether a wider window may return more rows.
func (w *VisitWindow) CanLoadMore() bool {
	return w.propertyID != "" && len(w.rows) == w.limit
}

// Rows returns the unfiltered rows of the last snapshot.
func (w *VisitWindow) Rows() []entity.Visit {
	return w.rows
}

// bind replaces the subscription, which also retires its last error.
func (w *VisitWindow) bind() {
	w.err = nil
	q := visitsQuery(w.propertyID, w.limit)
	w.slot.Rebind(func() livequery.CancelFunc {
		return livequery.Bind(w.binder, q, record.Visit, w.onRows, w.failed)
	})
}

func (w *VisitWindow) onRows(rows []entity.Visit) {
	w.rows = rows
	w.loaded()
	w.notify()
}

// State returns the published view with the time window applied.
func (w *VisitWindow) State() VisitsState {
	visible := filter.VisitorsByWindowAt(w.rows, w.window, w.now())
	rows := make([]VisitRow, 0, len(visible))
	for _, v := range visible {
		rows = append(rows, VisitRow{Visit: v, RoleLabel: utils.FormatRole(string(v.Role))})
	}
	return VisitsState{
		FeedStatus:  w.status(),
		Rows:        rows,
		Total:       len(w.rows),
		Limit:       w.limit,
		CanLoadMore: w.CanLoadMore(),
		Window:      w.window,
	}
}

// Snapshot implements Feed.
func (w *VisitWindow) Snapshot() interface{} {
	return w.State()
}

// Close implements Feed.
func (w *VisitWindow) Close() {
	w.slot.Cancel()
}
