package repository

import (
	"context"

	"github.com/keelbrowser/keel/internal/domain/entity"
)

// PlaceUpdate is a partial update: only non-nil fields are written, omitted
// fields are left untouched.
type PlaceUpdate struct {
	Title      *string
	FaviconURL *string
}

// PlaceRepository persists canonical place records keyed by normalized URL.
type PlaceRepository interface {
	// GetOrCreate looks up a place by its normalized URL and inserts it if
	// absent. The unique constraint on normalized_url is the final arbiter
	// under concurrent creation: a losing insert is retried as a lookup, so
	// every caller receives the same id.
	GetOrCreate(ctx context.Context, place entity.Place) (int64, error)

	// FindByNormalizedURL retrieves a place by its normalized URL.
	// Returns ErrNotFound when absent.
	FindByNormalizedURL(ctx context.Context, normalizedURL string) (*entity.Place, error)

	// FindByID retrieves a place by id. Returns ErrNotFound when absent.
	FindByID(ctx context.Context, id int64) (*entity.Place, error)

	// Update applies a partial metadata update. Returns ErrNotFound when the
	// place does not exist.
	Update(ctx context.Context, id int64, upd PlaceUpdate) error

	// IncrementTypedCount bumps typed_count for a place reached by a typed
	// navigation.
	IncrementTypedCount(ctx context.Context, id int64) error

	// SetBookmarked flips the bookmark flag. Returns ErrNotFound when the
	// place does not exist.
	SetBookmarked(ctx context.Context, id int64, bookmarked bool) error
}
