package storage

import "errors"

// Storage errors shared by all backends.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCorrupt indicates a persisted document that could not be decoded.
	// Read paths recover from it by falling back to an empty state; it is
	// surfaced so callers can log the degradation.
	ErrCorrupt = errors.New("corrupt store data")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
