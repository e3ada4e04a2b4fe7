package livequery_test

import (
	"context"
	"errors"
	"testing"

	"propdesk-service/internal/livequery"
	"propdesk-service/internal/livequery/livequerytest"
	"propdesk-service/pkg/logger"
	"propdesk-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type row struct {
	ID   string
	Name string `bson:"name"`
}

func mapRow(d livequery.Document) (row, error) {
	var r row
	if err := d.Decode(&r); err != nil {
		return row{}, err
	}
	r.ID = d.ID
	return r, nil
}

func newBinder(t *testing.T) (*livequery.Binder, *livequerytest.Source, *livequery.Loop, *metrics.Metrics) {
	loop := livequerytest.StartLoop(t)
	src := livequerytest.NewSource()
	m := metrics.NewNopMetrics()
	return livequery.NewBinder(context.Background(), src, loop, logger.NewNop(), m), src, loop, m
}

func TestBind_DeliversMappedSnapshots(t *testing.T) {
	b, src, loop, m := newBinder(t)

	var got [][]row
	q := livequery.Query{Collection: "units", Scope: bson.D{{Key: "propertyId", Value: "p1"}}}
	livequerytest.Do(t, loop, func() {
		livequery.Bind(b, q, mapRow, func(rows []row) { got = append(got, rows) }, func(error) {})
	})

	sub := src.LiveScoped(t, "units", "propertyId", "p1")
	sub.Emit(livequerytest.Doc(t, "u1", bson.M{"name": "101"}), livequerytest.Doc(t, "u2", bson.M{"name": "102"}))
	sub.Emit(livequerytest.Doc(t, "u2", bson.M{"name": "102"}))
	livequerytest.Flush(t, loop)

	require.Len(t, got, 2)
	assert.Equal(t, []row{{ID: "u1", Name: "101"}, {ID: "u2", Name: "102"}}, got[0])
	assert.Equal(t, []row{{ID: "u2", Name: "102"}}, got[1])
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SnapshotsDelivered.WithLabelValues("units")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubscriptionsActive.WithLabelValues("units")))
}

func TestBind_SkipsMalformedDocuments(t *testing.T) {
	b, src, loop, _ := newBinder(t)

	var got []row
	livequerytest.Do(t, loop, func() {
		livequery.Bind(b, livequery.Query{Collection: "units"}, mapRow, func(rows []row) { got = rows }, func(error) {})
	})

	src.Live("units")[0].Emit(
		livequerytest.Doc(t, "u1", bson.M{"name": "101"}),
		livequery.Document{ID: "bad", Raw: bson.Raw{0x01}},
	)
	livequerytest.Flush(t, loop)

	assert.Equal(t, []row{{ID: "u1", Name: "101"}}, got)
}

func TestBind_CancelStopsDeliveries(t *testing.T) {
	b, src, loop, m := newBinder(t)

	calls := 0
	var cancel livequery.CancelFunc
	livequerytest.Do(t, loop, func() {
		cancel = livequery.Bind(b, livequery.Query{Collection: "visits"}, mapRow, func([]row) { calls++ }, func(error) {})
	})
	sub := src.Live("visits")[0]

	// Posted before cancel but still queued: must be dropped.
	livequerytest.Do(t, loop, func() {
		sub.Emit()
		cancel()
		cancel()
	})
	sub.Emit()
	livequerytest.Flush(t, loop)

	assert.Equal(t, 0, calls)
	assert.True(t, sub.Canceled())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SubscriptionsActive.WithLabelValues("visits")))
}

func TestBind_ErrorStopsUpdates(t *testing.T) {
	b, src, loop, m := newBinder(t)

	var errs []error
	calls := 0
	livequerytest.Do(t, loop, func() {
		livequery.Bind(b, livequery.Query{Collection: "events"}, mapRow,
			func([]row) { calls++ },
			func(err error) { errs = append(errs, err) })
	})

	sub := src.Live("events")[0]
	sub.Fail(errors.New("permission denied"))
	sub.Fail(errors.New("again"))
	sub.Emit()
	livequerytest.Flush(t, loop)

	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "permission denied")
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubscriptionErrors.WithLabelValues("events")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SubscriptionsActive.WithLabelValues("events")))
}

func TestSlot_CancelsBeforeRebinding(t *testing.T) {
	b, src, loop, _ := newBinder(t)

	var slot livequery.Slot
	var liveAtBind []int
	bind := func(limit int) {
		slot.Rebind(func() livequery.CancelFunc {
			liveAtBind = append(liveAtBind, len(src.Live("visits")))
			return livequery.Bind(b, livequery.Query{Collection: "visits", Limit: limit}, mapRow, func([]row) {}, func(error) {})
		})
	}

	livequerytest.Do(t, loop, func() {
		bind(30)
		bind(40)
		bind(50)
	})

	assert.Equal(t, []int{0, 0, 0}, liveAtBind, "previous subscription must be gone before the next bind")
	live := src.Live("visits")
	require.Len(t, live, 1)
	assert.Equal(t, 50, live[0].Query.Limit)

	livequerytest.Do(t, loop, func() {
		assert.True(t, slot.Active())
		slot.Cancel()
		assert.False(t, slot.Active())
	})
	assert.Empty(t, src.Live("visits"))
}
