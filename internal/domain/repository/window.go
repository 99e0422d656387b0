package repository

import (
	"context"

	"github.com/keelbrowser/keel/internal/domain/entity"
)

// WindowRepository persists top-level window records.
type WindowRepository interface {
	// Create inserts a window row with default geometry and returns its id.
	Create(ctx context.Context) (int64, error)

	// SaveState records the final geometry snapshot and stamps closed_on.
	// This is the only write path for window state: it doubles as the
	// "record final state on close" operation.
	SaveState(ctx context.Context, id int64, geo entity.Geometry) error

	// LastClosed returns the most recently closed window, used to pick
	// restoration geometry at startup. Returns ErrNotFound when no window
	// was ever closed.
	LastClosed(ctx context.Context) (*entity.BrowserWindow, error)

	// FindByID retrieves a window by id. Returns ErrNotFound when absent.
	FindByID(ctx context.Context, id int64) (*entity.BrowserWindow, error)

	// DeleteAll hard-deletes every window row (start-fresh startup policy).
	DeleteAll(ctx context.Context) error
}
