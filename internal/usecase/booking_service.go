package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/repository"
	"propdesk-service/pkg/logger"
	"propdesk-service/pkg/metrics"
	"propdesk-service/pkg/utils"
)

// BookingService handles booking writes from the console
type BookingService struct {
	bookings  repository.BookingRepository
	amenities repository.AmenityRepository
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookings repository.BookingRepository,
	amenities repository.AmenityRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		amenities: amenities,
		metrics:   metrics,
		logger:    logger,
	}
}

// Create books an amenity on behalf of a resident. The end time is derived
// from the start and the duration; the booking starts out pending.
func (s *BookingService) Create(ctx context.Context, propertyID, createdBy string, in entity.NewBooking) (b *entity.Booking, err error) {
	defer track(s.metrics, OpCreateBooking, time.Now(), &err)

	if err := requireProperty(propertyID); err != nil {
		return nil, err
	}
	in.ResidentName = strings.TrimSpace(in.ResidentName)
	in.UnitLabel = strings.TrimSpace(in.UnitLabel)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	amenity, err := s.amenities.FindByID(ctx, propertyID, in.AmenityID)
	if err != nil {
		return nil, fmt.Errorf("amenity %s: %w", in.AmenityID, err)
	}

	b = &entity.Booking{
		PropertyID:   propertyID,
		AmenityID:    amenity.ID,
		AmenityName:  amenity.Name,
		ResidentName: in.ResidentName,
		UnitLabel:    in.UnitLabel,
		BookedDate:   in.BookedDate,
		StartAt:      in.StartAt,
		EndAt:        utils.ComputeEndTime(in.StartAt, in.DurationMinutes),
		Notes:        strings.TrimSpace(in.Notes),
		Status:       entity.BookingPending,
		CreatedBy:    createdBy,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		s.logger.Error("Failed to create booking", "propertyID", propertyID, "amenityID", in.AmenityID, "error", err)
		return nil, err
	}

	s.logger.Info("Booking created", "propertyID", propertyID, "amenityID", b.AmenityID, "bookingID", b.ID)
	return b, nil
}

// SetStatus approves, rejects or reopens a booking
func (s *BookingService) SetStatus(ctx context.Context, propertyID string, key entity.BookingKey, status entity.BookingStatus) (err error) {
	defer track(s.metrics, OpSetBookingStatus, time.Now(), &err)

	if err := requireProperty(propertyID); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", entity.ErrValidation, status)
	}
	if key.AmenityID == "" || key.BookingID == "" {
		return fmt.Errorf("%w: booking key is incomplete", entity.ErrValidation)
	}

	if err := s.bookings.UpdateStatus(ctx, propertyID, key, status); err != nil {
		s.logger.Error("Failed to update booking status", "propertyID", propertyID, "bookingID", key.BookingID, "error", err)
		return err
	}
	s.logger.Info("Booking status updated", "propertyID", propertyID, "amenityID", key.AmenityID, "bookingID", key.BookingID, "status", status)
	return nil
}
