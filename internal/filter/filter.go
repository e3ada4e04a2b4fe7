// Package filter holds the pure list filters behind the visitor log and the
// amenity request table.
package filter

import (
	"time"

	"propdesk-service/internal/domain/entity"
)

// WindowKey selects a visitor time window.
type WindowKey string

const (
	WindowToday WindowKey = "today"
	Window7d    WindowKey = "7d"
	Window30d   WindowKey = "30d"
	WindowAll   WindowKey = "all"
)

// StatusKey selects a booking status; StatusAll disables the filter.
type StatusKey string

const (
	StatusAll      StatusKey = "all"
	StatusPending  StatusKey = StatusKey(entity.BookingPending)
	StatusApproved StatusKey = StatusKey(entity.BookingApproved)
	StatusRejected StatusKey = StatusKey(entity.BookingRejected)
)

// VisitorsByWindow is VisitorsByWindowAt against the current time.
func VisitorsByWindow(records []entity.Visit, key WindowKey) []entity.Visit {
	return VisitorsByWindowAt(records, key, time.Now())
}

// VisitorsByWindowAt keeps visits created within [start, now]. "today" starts
// at local midnight of now's location; 7d and 30d count back from now. "all"
// and unknown keys return the input as is. Input order is kept.
func VisitorsByWindowAt(records []entity.Visit, key WindowKey, now time.Time) []entity.Visit {
	if len(records) == 0 {
		return []entity.Visit{}
	}

	var start time.Time
	switch key {
	case WindowToday:
		y, m, d := now.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case Window7d:
		start = now.AddDate(0, 0, -7)
	case Window30d:
		start = now.AddDate(0, 0, -30)
	default:
		return records
	}

	out := make([]entity.Visit, 0, len(records))
	for _, v := range records {
		if v.CreatedAt == nil {
			continue
		}
		t := *v.CreatedAt
		if t.Before(start) || t.After(now) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// BookingsByStatus keeps bookings whose status equals key, counting a missing
// status as pending. "all" returns the input as is.
func BookingsByStatus(records []entity.Booking, key StatusKey) []entity.Booking {
	if len(records) == 0 {
		return []entity.Booking{}
	}
	if key == StatusAll {
		return records
	}

	out := make([]entity.Booking, 0, len(records))
	for _, b := range records {
		if StatusKey(b.Status.OrPending()) == key {
			out = append(out, b)
		}
	}
	return out
}

// ParseWindowKey maps client input to a key. Unknown input means no
// filtering, so it maps to all.
func ParseWindowKey(s string) WindowKey {
	switch WindowKey(s) {
	case WindowToday, Window7d, Window30d, WindowAll:
		return WindowKey(s)
	}
	return WindowAll
}

// ParseStatusKey maps client input to a key, defaulting to all.
func ParseStatusKey(s string) StatusKey {
	switch StatusKey(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return StatusKey(s)
	}
	return StatusAll
}
