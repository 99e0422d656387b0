package repository

import (
	"context"

	"github.com/keelbrowser/keel/internal/domain/entity"
)

// VisitRepository persists navigation events and serves the paginated
// history view.
type VisitRepository interface {
	// Record inserts a visit and updates the owning place's visit_count and
	// last_visit_date in the same transaction: both writes commit together
	// or neither does.
	Record(ctx context.Context, visit entity.Visit) (int64, error)

	// GetPage returns the most recent limit distinct places ordered by each
	// place's latest visit, (visit_date, id) descending. A nil cursor starts
	// from the head. limit+1 rows are fetched internally to derive the next
	// cursor without a count query. limit < 1 is ErrInvalidArgument.
	GetPage(ctx context.Context, cursor *entity.HistoryCursor, limit int) (*entity.HistoryPage, error)

	// DeleteForPlaces bulk-deletes all visits of the given places. The
	// places themselves are kept; with zero visits left they simply drop out
	// of future pages.
	DeleteForPlaces(ctx context.Context, placeIDs []int64) error

	// DeleteAll removes every visit. Place counters are left as-is.
	DeleteAll(ctx context.Context) error

	// CountForPlace returns the number of visits recorded for a place.
	CountForPlace(ctx context.Context, placeID int64) (int64, error)
}
