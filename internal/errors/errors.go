package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource conflict")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Business errors
	ErrNoDriversAvailable = errors.New("no drivers available")
	ErrAlreadyAccepted    = errors.New("ride already accepted by another driver")
	ErrAlreadyResolved    = errors.New("ride request already resolved")
	ErrQueueExhausted     = errors.New("driver queue exhausted")
	ErrQueueExpired       = errors.New("driver queue expired")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrPinNotVerified     = errors.New("ride pin not verified")
	ErrPinLocked          = errors.New("ride pin locked")
	ErrFareUnavailable    = errors.New("fare unavailable for this route")
)

// APIError represents a structured API error
type APIError struct {
	Code       string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error
func NewAPIError(code, message string, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NotFound covers both missing resources and resources the caller is not
// allowed to touch, so a rejected caller cannot probe for existence.
func NotFound(resource string) *APIError {
	return NewAPIError("not_found", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func BadRequest(message string) *APIError {
	return NewAPIError("bad_request", message, http.StatusBadRequest)
}

func Conflict(message string) *APIError {
	return NewAPIError("conflict", message, http.StatusConflict)
}

func InternalError(message string) *APIError {
	return NewAPIError("internal_error", message, http.StatusInternalServerError)
}

func Unauthorized(message string) *APIError {
	return NewAPIError("unauthorized", message, http.StatusUnauthorized)
}

func IdempotencyConflict() *APIError {
	return NewAPIError("idempotency_conflict", "idempotency key already used with different request", http.StatusConflict)
}

// AlreadyHandled signals the request was resolved by someone else; the client
// should refresh state instead of retrying.
func AlreadyHandled(message string) *APIError {
	return NewAPIError("already_handled", message, http.StatusConflict)
}

func NoDriversAvailable() *APIError {
	return NewAPIError("no_drivers_available", "no drivers available for this vehicle class", http.StatusServiceUnavailable)
}

// QueueExhausted is terminal for a ride request, unlike a transient shortage.
func QueueExhausted() *APIError {
	return NewAPIError("queue_exhausted", "no more drivers available for this request", http.StatusGone)
}

func InvalidTransition(from, to string) *APIError {
	return NewAPIError("invalid_transition", fmt.Sprintf("cannot transition from %s to %s", from, to), http.StatusBadRequest)
}

// PinLocked reports how long the verifier stays locked out.
func PinLocked(minutesLeft int) *APIError {
	return NewAPIError("pin_locked",
		fmt.Sprintf("too many wrong attempts, try again in %d minute(s)", minutesLeft),
		http.StatusTooManyRequests)
}

func PinNotVerified() *APIError {
	return NewAPIError("pin_not_verified", "ride pin must be verified before starting the ride", http.StatusConflict)
}

func FareUnavailable() *APIError {
	return NewAPIError("fare_unavailable", "service unavailable for this route", http.StatusServiceUnavailable)
}

func VehicleNotAllowed(vehicle string) *APIError {
	return NewAPIError("vehicle_not_allowed", fmt.Sprintf("%s is not available for outstation rides", vehicle), http.StatusBadRequest)
}
