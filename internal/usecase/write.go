package usecase

import (
	"fmt"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/pkg/metrics"

	"github.com/go-playground/validator/v10"
)

// Write operation names, used as metric labels.
const (
	OpCreateBooking    = "create_booking"
	OpSetBookingStatus = "set_booking_status"
	OpCreateUnit       = "create_unit"
	OpUpdateUnit       = "update_unit"
	OpToggleUnit       = "toggle_unit"
	OpUploadSlides     = "upload_slides"
	OpDeleteSlide      = "delete_slide"
	OpCreateEvent      = "create_event"
	OpUpdateEvent      = "update_event"
	OpDeleteEvent      = "delete_event"
)

var validate = validator.New()

// validateInput runs the struct tags and wraps failures in ErrValidation.
func validateInput(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", entity.ErrValidation, err.Error())
	}
	return nil
}

func requireProperty(propertyID string) error {
	if propertyID == "" {
		return entity.ErrNoPropertyScope
	}
	return nil
}

// track records one write. Use as: defer track(m, op, time.Now(), &err).
func track(m *metrics.Metrics, op string, start time.Time, err *error) {
	m.Writes.WithLabelValues(op).Inc()
	m.WriteDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil && *err != nil {
		m.WriteErrors.WithLabelValues(op).Inc()
	}
}
