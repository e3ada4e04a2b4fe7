package filter

import (
	"testing"
	"time"

	"propdesk-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func at(t time.Time) *time.Time { return &t }

func visitIDs(vs []entity.Visit) []string {
	ids := make([]string, 0, len(vs))
	for _, v := range vs {
		ids = append(ids, v.ID)
	}
	return ids
}

func TestVisitorsByWindowAt(t *testing.T) {
	// Mid-afternoon so now-1h is still today.
	now := time.Date(2025, 6, 18, 15, 0, 0, 0, time.Local)
	records := []entity.Visit{
		{ID: "1h", CreatedAt: at(now.Add(-time.Hour))},
		{ID: "2d", CreatedAt: at(now.Add(-48 * time.Hour))},
		{ID: "10d", CreatedAt: at(now.AddDate(0, 0, -10))},
		{ID: "40d", CreatedAt: at(now.AddDate(0, 0, -40))},
	}

	tests := []struct {
		key  WindowKey
		want []string
	}{
		{WindowToday, []string{"1h"}},
		{Window7d, []string{"1h", "2d"}},
		{Window30d, []string{"1h", "2d", "10d"}},
		{WindowAll, []string{"1h", "2d", "10d", "40d"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, visitIDs(VisitorsByWindowAt(records, tt.key, now)))
		})
	}
}

func TestVisitorsByWindowAt_Edges(t *testing.T) {
	now := time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC)
	midnight := time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)

	records := []entity.Visit{
		{ID: "no-timestamp"},
		{ID: "midnight", CreatedAt: at(midnight)},
		{ID: "just-before-midnight", CreatedAt: at(midnight.Add(-time.Nanosecond))},
		{ID: "now", CreatedAt: at(now)},
		{ID: "future", CreatedAt: at(now.Add(time.Minute))},
		{ID: "exactly-7d", CreatedAt: at(now.AddDate(0, 0, -7))},
	}

	assert.Equal(t, []string{"midnight", "now"}, visitIDs(VisitorsByWindowAt(records, WindowToday, now)))
	assert.Equal(t, []string{"midnight", "just-before-midnight", "now", "exactly-7d"},
		visitIDs(VisitorsByWindowAt(records, Window7d, now)))
}

func TestVisitorsByWindowAt_AllAndUnknownReturnInput(t *testing.T) {
	now := time.Now()
	records := []entity.Visit{{ID: "a"}, {ID: "b", CreatedAt: at(now.AddDate(-1, 0, 0))}}

	all := VisitorsByWindowAt(records, WindowAll, now)
	assert.Equal(t, records, all)
	assert.Same(t, &records[0], &all[0])

	assert.Equal(t, records, VisitorsByWindowAt(records, WindowKey("90d"), now))
}

func TestVisitorsByWindow_EmptyInput(t *testing.T) {
	assert.Equal(t, []entity.Visit{}, VisitorsByWindow(nil, WindowToday))
	assert.Equal(t, []entity.Visit{}, VisitorsByWindow([]entity.Visit{}, WindowAll))
}

func TestBookingsByStatus(t *testing.T) {
	records := []entity.Booking{
		{ID: "unset"},
		{ID: "p", Status: entity.BookingPending},
		{ID: "a", Status: entity.BookingApproved},
		{ID: "r", Status: entity.BookingRejected},
	}

	ids := func(bs []entity.Booking) []string {
		out := []string{}
		for _, b := range bs {
			out = append(out, b.ID)
		}
		return out
	}

	assert.Equal(t, []string{"unset", "p"}, ids(BookingsByStatus(records, StatusPending)))
	assert.Equal(t, []string{"a"}, ids(BookingsByStatus(records, StatusApproved)))
	assert.Equal(t, []string{"r"}, ids(BookingsByStatus(records, StatusRejected)))
	assert.Equal(t, records, BookingsByStatus(records, StatusAll))
	assert.Empty(t, BookingsByStatus(records, StatusKey("cancelled")))
	assert.Equal(t, []entity.Booking{}, BookingsByStatus(nil, StatusAll))
}

func TestParseKeys(t *testing.T) {
	assert.Equal(t, Window30d, ParseWindowKey("30d"))
	assert.Equal(t, WindowToday, ParseWindowKey("today"))
	assert.Equal(t, WindowAll, ParseWindowKey(""))
	assert.Equal(t, WindowAll, ParseWindowKey("90d"))
	assert.Equal(t, StatusApproved, ParseStatusKey("approved"))
	assert.Equal(t, StatusAll, ParseStatusKey("bogus"))
}
