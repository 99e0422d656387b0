package usecase

import (
	"context"
	"fmt"

	"github.com/keelbrowser/keel/internal/domain/repository"
)

// BookmarkPlaceUseCase flips the bookmark flag on a place.
type BookmarkPlaceUseCase struct {
	places repository.PlaceRepository
}

// NewBookmarkPlaceUseCase creates a new BookmarkPlaceUseCase.
func NewBookmarkPlaceUseCase(places repository.PlaceRepository) *BookmarkPlaceUseCase {
	return &BookmarkPlaceUseCase{places: places}
}

// Execute sets the bookmark flag. Returns repository.ErrNotFound for an
// unknown place.
func (uc *BookmarkPlaceUseCase) Execute(ctx context.Context, placeID int64, bookmarked bool) error {
	if err := uc.places.SetBookmarked(ctx, placeID, bookmarked); err != nil {
		return fmt.Errorf("set bookmark: %w", err)
	}
	return nil
}
