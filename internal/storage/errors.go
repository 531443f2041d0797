package storage

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable wraps driver-level connectivity failures. Fatal
	// to the current operation; retry policy belongs to the caller.
	ErrStoreUnavailable = errors.New("store unavailable")
)
