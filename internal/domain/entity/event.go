package entity

import "time"

// EventStatus values used by the console.
const (
	EventUpcoming  = "upcoming"
	EventOngoing   = "ongoing"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
)

// Event is a community event shown to residents.
type Event struct {
	ID               string     `json:"id"`
	PropertyID       string     `json:"propertyId"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	StartAt          *time.Time `json:"startAt"`
	SignUpLink       string     `json:"signUpLink"`
	Location         string     `json:"location"`
	ImageURL         string     `json:"imageUrl"`
	CreatedAt        *time.Time `json:"createdAt"`
	CreatedByStaffID string     `json:"createdByStaffId,omitempty"`
}

// EventInput is the create/update form.
type EventInput struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Status      string    `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
	StartAt     time.Time `json:"startAt" validate:"required"`
	SignUpLink  string    `json:"signUpLink" validate:"omitempty,url"`
	Location    string    `json:"location"`
}
