package entity

import "time"

// BookingStatus is the review state of a booking.
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingRejected BookingStatus = "rejected"
)

// Valid reports whether s is one of the three known states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingRejected:
		return true
	}
	return false
}

// OrPending maps an empty status to pending.
func (s BookingStatus) OrPending() BookingStatus {
	if s == "" {
		return BookingPending
	}
	return s
}

// Booking is an amenity reservation. Its ID is unique only within the
// amenity, so rows are keyed by Key().
type Booking struct {
	ID           string        `json:"id"`
	PropertyID   string        `json:"propertyId"`
	AmenityID    string        `json:"amenityId"`
	AmenityName  string        `json:"amenity"`
	ResidentName string        `json:"name"`
	UnitLabel    string        `json:"unitLabel"`
	UnitID       string        `json:"unitId,omitempty"`
	BookedDate   string        `json:"bookedDate"`
	StartAt      string        `json:"startAt"`
	EndAt        string        `json:"endAt"`
	Notes        string        `json:"notes"`
	GuestCount   int           `json:"guestCount"`
	Status       BookingStatus `json:"status"`
	CreatedAt    *time.Time    `json:"createdAt"`
	CreatedBy    string        `json:"createdBy,omitempty"`
}

// BookingKey identifies a booking across amenities.
type BookingKey struct {
	AmenityID string
	BookingID string
}

// Key returns the (amenity, booking) identity.
func (b Booking) Key() BookingKey {
	return BookingKey{AmenityID: b.AmenityID, BookingID: b.ID}
}

// NewBooking is the admin form for a manual booking.
type NewBooking struct {
	ResidentName    string `json:"name" validate:"required"`
	UnitLabel       string `json:"unitLabel" validate:"required"`
	AmenityID       string `json:"amenityId" validate:"required"`
	BookedDate      string `json:"bookedDate" validate:"required,datetime=2006-01-02"`
	StartAt         string `json:"startAt" validate:"required,datetime=15:04"`
	DurationMinutes int    `json:"duration" validate:"required,gt=0"`
	Notes           string `json:"notes"`
}
