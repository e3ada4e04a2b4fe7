package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/infrastructure/oauth"
	"propdesk-service/pkg/logger"
)

// Error codes returned in the envelope.
const (
	ErrCodeInvalidPayload  = "invalid_payload"
	ErrCodeValidation      = "validation_error"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeForbidden       = "forbidden"
	ErrCodeNotFound        = "not_found"
	ErrCodeSlideLimit      = "slide_limit_reached"
	ErrCodeNoProperty      = "no_property_selected"
	ErrCodePayloadTooLarge = "payload_too_large"
	ErrCodeInternal        = "internal_server_error"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AppError carries the HTTP mapping of a service failure.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// toAppError maps domain errors to status codes. Validation messages are
// passed through; anything unknown becomes a generic 500.
func toAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, entity.ErrValidation):
		return &AppError{http.StatusBadRequest, ErrCodeValidation, err.Error(), err}
	case errors.Is(err, entity.ErrNoPropertyScope):
		return &AppError{http.StatusBadRequest, ErrCodeNoProperty, "No property selected", err}
	case errors.Is(err, entity.ErrNotFound):
		return &AppError{http.StatusNotFound, ErrCodeNotFound, "Not found", err}
	case errors.Is(err, entity.ErrSlideLimit):
		return &AppError{http.StatusConflict, ErrCodeSlideLimit, "Slideshow is full", err}
	case errors.Is(err, entity.ErrForbidden):
		return &AppError{http.StatusForbidden, ErrCodeForbidden, "Not allowed", err}
	case errors.Is(err, oauth.ErrInvalidToken):
		return &AppError{http.StatusUnauthorized, ErrCodeUnauthorized, "Sign in required", err}
	default:
		return &AppError{http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", err}
	}
}

// respondJSON for successful cases
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// handleError logs server-side failures and writes the envelope.
func handleError(w http.ResponseWriter, log logger.Logger, err error) {
	appErr := toAppError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Error(appErr.Message, "status", appErr.StatusCode, "error", err)
	} else {
		log.Debug("Request rejected", "status", appErr.StatusCode, "code", appErr.Code, "error", err)
	}
	respondError(w, appErr.StatusCode, appErr.Code, appErr.Message)
}

// decodeJSON reads a size-limited JSON body. It writes the error response
// itself and reports false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Request body too large")
		} else {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidPayload, "Invalid JSON payload")
		}
		return false
	}
	return true
}
