package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in
	// the store. This is a generic version of the entity-specific not
	// found errors.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails, for
	// example because the entity does not exist or the update violates
	// constraints.
	ErrUpdateFailed = errors.New("update failed")

	// ErrQuotaExceeded is returned when durable local storage has no room
	// for the payload being written. A full local queue is an expected
	// operating condition, not a bug, so callers treat this as
	// recoverable rather than fatal.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// Entity-specific "not found" errors

	// ErrScheduleStateNotFound indicates that no scheduling state exists
	// yet for the requested user and item.
	ErrScheduleStateNotFound = fmt.Errorf("%w: schedule state", ErrNotFound)

	// ErrItemNotFound indicates that the requested vocabulary item does
	// not exist in the store.
	ErrItemNotFound = fmt.Errorf("%w: item", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsQuotaError checks if the error indicates exhausted storage quota.
func IsQuotaError(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}
