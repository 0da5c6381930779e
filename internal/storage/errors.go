package storage

import "errors"

// Sentinel errors returned by store methods. Callers match them with
// [errors.Is].
var (
	// ErrValidation is returned when an event or rule fails validation
	// (non-positive duration, missing required field, bad pattern).
	// Nothing is persisted.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidRange is returned for query ranges where end <= start.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrNotFound is returned when a delete or lookup targets a row
	// that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable is returned when the underlying database
	// cannot be reached. The core never retries; retry policy belongs
	// to the caller.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
