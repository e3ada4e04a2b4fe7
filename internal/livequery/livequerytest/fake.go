// Package livequerytest provides an in-memory livequery.Source whose
// snapshots are pushed by the test.
package livequerytest

import (
	"context"
	"sync"
	"testing"
	"time"

	"propdesk-service/internal/livequery"
)

// Subscription is one open (or closed) subscription on the fake source.
type Subscription struct {
	Query livequery.Query

	mu         sync.Mutex
	canceled   bool
	onSnapshot func([]livequery.Document)
	onError    func(error)
}

// Emit pushes a snapshot. Ignored once the subscription is canceled.
func (s *Subscription) Emit(docs ...livequery.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canceled {
		return
	}
	if docs == nil {
		docs = []livequery.Document{}
	}
	s.onSnapshot(docs)
}

// Fail pushes a subscription error.
func (s *Subscription) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canceled {
		return
	}
	s.onError(err)
}

// Canceled reports whether the consumer released the subscription.
func (s *Subscription) Canceled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled
}

// ScopeValue returns the equality value for key, or nil.
func (s *Subscription) ScopeValue(key string) interface{} {
	for _, e := range s.Query.Scope {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Source records every subscription made against it.
type Source struct {
	mu   sync.Mutex
	subs []*Subscription
}

// NewSource creates an empty fake.
func NewSource() *Source {
	return &Source{}
}

// Subscribe implements livequery.Source.
func (s *Source) Subscribe(_ context.Context, q livequery.Query, onSnapshot func([]livequery.Document), onError func(error)) livequery.CancelFunc {
	sub := &Subscription{Query: q, onSnapshot: onSnapshot, onError: onError}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return func() {
		sub.mu.Lock()
		sub.canceled = true
		sub.mu.Unlock()
	}
}

// All returns every subscription ever opened, in order.
func (s *Source) All() []*Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Subscription(nil), s.subs...)
}

// Live returns the open subscriptions on collection.
func (s *Source) Live(collection string) []*Subscription {
	var out []*Subscription
	for _, sub := range s.All() {
		if sub.Query.Collection == collection && !sub.Canceled() {
			out = append(out, sub)
		}
	}
	return out
}

// LiveScoped returns the single open subscription on collection whose scope
// has key == value. It fails the test if there is not exactly one.
func (s *Source) LiveScoped(t testing.TB, collection, key string, value interface{}) *Subscription {
	t.Helper()
	var found []*Subscription
	for _, sub := range s.Live(collection) {
		if sub.ScopeValue(key) == value {
			found = append(found, sub)
		}
	}
	if len(found) != 1 {
		t.Fatalf("expected one live %s subscription with %s=%v, got %d", collection, key, value, len(found))
	}
	return found[0]
}

// Doc builds a document or fails the test.
func Doc(t testing.TB, id string, v interface{}) livequery.Document {
	t.Helper()
	d, err := livequery.NewDocument(id, v)
	if err != nil {
		t.Fatalf("marshal %s: %v", id, err)
	}
	return d
}

// StartLoop runs a loop for the duration of the test.
func StartLoop(t testing.TB) *livequery.Loop {
	t.Helper()
	loop := livequery.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})
	return loop
}

// Flush waits until everything posted to loop so far has run.
func Flush(t testing.TB, loop *livequery.Loop) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := loop.Call(ctx, func() {}); err != nil {
		t.Fatalf("flush loop: %v", err)
	}
}

// Do runs fn on loop and waits for it.
func Do(t testing.TB, loop *livequery.Loop, fn func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := loop.Call(ctx, fn); err != nil {
		t.Fatalf("run on loop: %v", err)
	}
}
