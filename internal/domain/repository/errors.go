package repository

import "errors"

// Error taxonomy shared by all repositories. Implementations wrap these
// sentinels so callers can match with errors.Is.
var (
	// ErrNotFound signals an update or delete referencing a missing id.
	// Recoverable: callers treat it as a stale no-op.
	ErrNotFound = errors.New("not found")

	// ErrConstraintViolation signals a unique-key conflict, typically a lost
	// race on place creation. Recoverable by falling back to a lookup.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrInvalidArgument signals a caller error such as a non-positive page
	// limit. Surfaced immediately, never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorageUnavailable signals that the underlying store is unreachable
	// or corrupt. Fatal to the current operation; in-memory session state
	// remains valid but persistence is degraded.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
