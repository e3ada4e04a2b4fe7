package usecase

import (
	"sort"
	"time"

	"propdesk-service/internal/livequery"
	"propdesk-service/pkg/logger"
)

// Feed is one live, property-scoped view. All methods except Updates must
// run on the loop of the binder the feed was built with.
type Feed interface {
	// SetProperty tears down every subscription and rebinds for propertyID.
	// An empty id leaves the feed idle and empty.
	SetProperty(propertyID string)
	// Snapshot returns the current state, ready to be encoded.
	Snapshot() interface{}
	// Close releases every subscription. The feed is unusable afterwards.
	Close()
	// Updates receives a value whenever the state changed since the last
	// receive. Bursts coalesce into one notification.
	Updates() <-chan struct{}
}

// LoadMorer is implemented by feeds with a growing window.
type LoadMorer interface {
	LoadMore()
}

// Filterer is implemented by feeds with a server-side filter.
type Filterer interface {
	SetFilter(key string)
}

// FeedStatus is the part of every feed state that tracks the subscription.
type FeedStatus struct {
	PropertyID string `json:"propertyId"`
	Loading    bool   `json:"loading"`
	Error      string `json:"error,omitempty"`
}

// feedBase carries what every feed shares. Loop-owned.
type feedBase struct {
	binder  *livequery.Binder
	logger  logger.Logger
	changed chan struct{}

	propertyID string
	loading    bool
	err        error
}

func newFeedBase(b *livequery.Binder, log logger.Logger) feedBase {
	return feedBase{
		binder:  b,
		logger:  log,
		changed: make(chan struct{}, 1),
	}
}

func (f *feedBase) Updates() <-chan struct{} {
	return f.changed
}

// notify never blocks: a pending notification already covers this change.
func (f *feedBase) notify() {
	select {
	case f.changed <- struct{}{}:
	default:
	}
}

// reset starts a new property scope.
func (f *feedBase) reset(propertyID string) {
	f.propertyID = propertyID
	f.loading = propertyID != ""
	f.err = nil
}

// loaded clears the loading flag. A failure reported by any subscription of
// the feed stays visible until the next reset.
func (f *feedBase) loaded() {
	f.loading = false
}

func (f *feedBase) failed(err error) {
	f.loading = false
	f.err = err
	f.notify()
}

func (f *feedBase) status() FeedStatus {
	s := FeedStatus{PropertyID: f.propertyID, Loading: f.loading}
	if f.err != nil {
		s.Error = f.err.Error()
	}
	return s
}

// newestFirst orders records by a timestamp, descending, with missing
// timestamps last. The sort is stable.
func newestFirst[T any](rows []T, at func(T) *time.Time) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := at(rows[i]), at(rows[j])
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
