package entity

import "errors"

// Domain errors. Wrap them with fmt.Errorf("...: %w", err) and let the HTTP
// layer map them to status codes.
var (
	ErrNotFound        = errors.New("not_found")
	ErrValidation      = errors.New("validation_error")
	ErrSlideLimit      = errors.New("slide_limit_reached")
	ErrForbidden       = errors.New("forbidden")
	ErrNoPropertyScope = errors.New("no_property_selected")
)
