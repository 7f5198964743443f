package api

import (
	"errors"
	"net/http"

	"github.com/renshu-app/renshu/internal/domain"
	"github.com/renshu-app/renshu/internal/session"
	"github.com/renshu-app/renshu/internal/store"
)

// ErrSessionNotFound is returned when a session ID does not match any
// live session.
var ErrSessionNotFound = errors.New("session not found")

// MapErrorToStatusCode maps internal errors to HTTP status codes so
// handlers stay consistent and never leak internal error types.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, store.ErrItemNotFound),
		errors.Is(err, store.ErrScheduleStateNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, session.ErrSessionAlreadyActive),
		errors.Is(err, session.ErrInvalidTransition):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidQuality),
		errors.Is(err, domain.ErrEmptyItemID),
		errors.Is(err, session.ErrNoItems),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Local durability exhausted
	case errors.Is(err, store.ErrQuotaExceeded):
		return http.StatusInsufficientStorage

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// given error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, session.ErrSessionAlreadyActive):
		return "A session is already active"

	case errors.Is(err, session.ErrInvalidTransition):
		return "Action not valid in the current session state"

	case errors.Is(err, session.ErrNoItems):
		return "A session needs at least one item"

	case errors.Is(err, domain.ErrInvalidQuality):
		return "Quality must be between 0 and 5"

	case errors.Is(err, domain.ErrEmptyItemID),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case errors.Is(err, store.ErrItemNotFound):
		return "Item not found"

	case errors.Is(err, store.ErrScheduleStateNotFound):
		return "Schedule state not found"

	case errors.Is(err, store.ErrQuotaExceeded):
		return "Local review storage is full"

	default:
		return "An unexpected error occurred"
	}
}
