package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/keelbrowser/keel/internal/domain/repository"
)

// mapError translates driver-level failures into the repository taxonomy.
// Context cancellation passes through untouched so callers can tell an
// abandoned operation apart from a broken store.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", repository.ErrConstraintViolation, err)
	}
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", repository.ErrStorageUnavailable, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "disk I/O error") ||
		strings.Contains(msg, "database disk image is malformed") ||
		strings.Contains(msg, "database is closed") {
		return fmt.Errorf("%w: %v", repository.ErrStorageUnavailable, err)
	}
	return err
}

// isUniqueViolation detects SQLITE_CONSTRAINT_UNIQUE by message; the driver
// does not export a typed error for it.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
