package livequery

import (
	"context"

	"propdesk-service/pkg/logger"
	"propdesk-service/pkg/metrics"
)

// Mapper turns one document into a record.
type Mapper[T any] func(Document) (T, error)

// Binder ties subscriptions from a Source to a Loop. Every callback it hands
// out runs on the loop, and every CancelFunc it returns must be called from
// the loop too.
type Binder struct {
	ctx     context.Context
	src     Source
	loop    *Loop
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewBinder creates a binder. ctx bounds every subscription it opens.
func NewBinder(ctx context.Context, src Source, loop *Loop, logger logger.Logger, m *metrics.Metrics) *Binder {
	return &Binder{
		ctx:     ctx,
		src:     src,
		loop:    loop,
		logger:  logger,
		metrics: m,
	}
}

// Loop returns the loop this binder delivers on.
func (b *Binder) Loop() *Loop {
	return b.loop
}

// binding is owned by the loop; its flags are only read and written there.
type binding struct {
	canceled bool
	failed   bool
}

func (s *binding) live() bool {
	return !s.canceled && !s.failed
}

// Bind subscribes to q. Each snapshot is mapped document by document and
// delivered whole to onRows. A subscription error goes to onErr once and the
// subscription stops updating. Documents that fail to map are skipped.
func Bind[T any](b *Binder, q Query, mapFn Mapper[T], onRows func([]T), onErr func(error)) CancelFunc {
	sub := &binding{}
	collection := q.Collection
	log := b.logger.With("query", q.String())

	srcCancel := b.src.Subscribe(b.ctx, q,
		func(docs []Document) {
			b.loop.Post(func() {
				if !sub.live() {
					return
				}
				rows := make([]T, 0, len(docs))
				for _, d := range docs {
					row, err := mapFn(d)
					if err != nil {
						log.Warn("Skipping malformed document", "id", d.ID, "error", err)
						continue
					}
					rows = append(rows, row)
				}
				b.metrics.SnapshotsDelivered.WithLabelValues(collection).Inc()
				onRows(rows)
			})
		},
		func(err error) {
			b.loop.Post(func() {
				if !sub.live() {
					return
				}
				sub.failed = true
				b.metrics.SubscriptionErrors.WithLabelValues(collection).Inc()
				b.metrics.SubscriptionsActive.WithLabelValues(collection).Dec()
				log.Error("Live query failed", "error", err)
				onErr(err)
			})
		},
	)
	b.metrics.SubscriptionsActive.WithLabelValues(collection).Inc()
	log.Debug("Live query bound")

	return func() {
		if sub.canceled {
			return
		}
		if !sub.failed {
			b.metrics.SubscriptionsActive.WithLabelValues(collection).Dec()
		}
		sub.canceled = true
		srcCancel()
		log.Debug("Live query released")
	}
}

// Slot holds at most one subscription. Rebind always releases the current
// one before opening the next, so a consumer never sees two streams for the
// same logical query. Loop-owned.
type Slot struct {
	cancel CancelFunc
}

// Rebind cancels the held subscription, then stores whatever bind returns.
func (s *Slot) Rebind(bind func() CancelFunc) {
	s.Cancel()
	s.cancel = bind()
}

// Cancel releases the held subscription, if any.
func (s *Slot) Cancel() {
	if s.cancel == nil {
		return
	}
	c := s.cancel
	s.cancel = nil
	c()
}

// Active reports whether a subscription is held.
func (s *Slot) Active() bool {
	return s.cancel != nil
}
