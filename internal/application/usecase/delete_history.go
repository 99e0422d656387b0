package usecase

import (
	"context"
	"fmt"

	"github.com/keelbrowser/keel/internal/domain/repository"
	"github.com/keelbrowser/keel/internal/logging"
)

// DeleteHistoryUseCase removes visit history, selectively or entirely.
// Places are never purged here: a place with zero remaining visits simply
// stops appearing in history pages.
type DeleteHistoryUseCase struct {
	visits repository.VisitRepository
}

// NewDeleteHistoryUseCase creates a new DeleteHistoryUseCase.
func NewDeleteHistoryUseCase(visits repository.VisitRepository) *DeleteHistoryUseCase {
	return &DeleteHistoryUseCase{visits: visits}
}

// Entries deletes all visits of the given places.
func (uc *DeleteHistoryUseCase) Entries(ctx context.Context, placeIDs []int64) error {
	if len(placeIDs) == 0 {
		return nil
	}
	if err := uc.visits.DeleteForPlaces(ctx, placeIDs); err != nil {
		return fmt.Errorf("delete history entries: %w", err)
	}
	return nil
}

// Clear deletes every visit. Place rows and their counters are left as-is.
func (uc *DeleteHistoryUseCase) Clear(ctx context.Context) error {
	log := logging.FromContext(ctx)

	if err := uc.visits.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	log.Info().Msg("browsing history cleared")
	return nil
}
