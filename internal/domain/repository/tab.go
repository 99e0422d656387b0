package repository

import (
	"context"

	"github.com/keelbrowser/keel/internal/domain/entity"
)

// TabUpdate is a partial update: only non-nil fields are written.
type TabUpdate struct {
	Index      *int
	IsSelected *bool
	PlaceID    *int64
	WindowID   *int64
}

// TabRepository persists tab records, including soft-closed ones kept for
// "reopen last closed tab".
type TabRepository interface {
	// Create inserts an open blank tab for a window and returns its id.
	// Index and selection are set by the caller afterwards.
	Create(ctx context.Context, windowID int64) (int64, error)

	// Update applies a partial update. Returns ErrNotFound when the tab does
	// not exist.
	Update(ctx context.Context, id int64, upd TabUpdate) error

	// Close soft-closes a tab by stamping closed_on. Closing an already
	// closed tab is a no-op.
	Close(ctx context.Context, id int64) error

	// PopClosed returns the most recently closed tab and clears its
	// closed_on in the same transaction, so each closed tab can be claimed
	// exactly once even under concurrent reopen requests. Returns
	// ErrNotFound when no closed tab exists.
	PopClosed(ctx context.Context) (*entity.Tab, error)

	// Open returns a window's open tabs ordered by index ascending, each
	// joined with its place record for session restore.
	Open(ctx context.Context, windowID int64) ([]*entity.Tab, error)

	// Delete hard-deletes a tab row, forgoing any undo.
	Delete(ctx context.Context, id int64) error

	// DeleteAll hard-deletes every tab row (start-fresh startup policy).
	DeleteAll(ctx context.Context) error
}
