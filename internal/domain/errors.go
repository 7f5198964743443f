// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidQuality is returned when a quality rating falls outside
	// the 0-5 scale.
	ErrInvalidQuality = errors.New("quality rating must be between 0 and 5")

	// ErrEmptyItemID is returned when a review or item carries no item ID.
	ErrEmptyItemID = errors.New("item ID cannot be empty")
)
