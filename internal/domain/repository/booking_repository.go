package repository

import (
	"context"

	"propdesk-service/internal/domain/entity"
)

// AmenityRepository defines the interface for amenity lookups
type AmenityRepository interface {
	FindByID(ctx context.Context, propertyID, amenityID string) (*entity.Amenity, error)
}

// BookingRepository defines the interface for booking writes
type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	UpdateStatus(ctx context.Context, propertyID string, key entity.BookingKey, status entity.BookingStatus) error
}
