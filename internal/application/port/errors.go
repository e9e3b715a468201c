package port

import "errors"

var (
	// ErrNotFound is returned when a referenced company, user, or expense
	// does not exist. Surfaced to the caller, never retried.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a user email is already taken.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrVersionConflict is returned when a decision update races another
	// writer on the same expense. The transaction rolls back whole.
	ErrVersionConflict = errors.New("expense was modified concurrently")

	// ErrExtractorUnavailable is returned when receipt extraction is not
	// configured for this deployment.
	ErrExtractorUnavailable = errors.New("receipt extraction is not configured")
)
