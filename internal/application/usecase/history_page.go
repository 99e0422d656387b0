package usecase

import (
	"context"
	"fmt"

	"github.com/keelbrowser/keel/internal/domain/entity"
	"github.com/keelbrowser/keel/internal/domain/repository"
)

// DefaultHistoryPageSize matches the browser's history view page length.
const DefaultHistoryPageSize = 100

// GetHistoryPageUseCase serves keyset-paginated history pages of distinct
// places, most recent first.
type GetHistoryPageUseCase struct {
	visits repository.VisitRepository
}

// NewGetHistoryPageUseCase creates a new GetHistoryPageUseCase.
func NewGetHistoryPageUseCase(visits repository.VisitRepository) *GetHistoryPageUseCase {
	return &GetHistoryPageUseCase{visits: visits}
}

// HistoryPageInput selects a page. A nil Cursor starts from the most recent
// entry; Limit 0 uses DefaultHistoryPageSize.
type HistoryPageInput struct {
	Cursor *entity.HistoryCursor
	Limit  int
}

// Execute fetches one page. A negative limit is rejected as invalid.
func (uc *GetHistoryPageUseCase) Execute(ctx context.Context, input HistoryPageInput) (*entity.HistoryPage, error) {
	limit := input.Limit
	if limit == 0 {
		limit = DefaultHistoryPageSize
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be >= 1, got %d", repository.ErrInvalidArgument, limit)
	}

	page, err := uc.visits.GetPage(ctx, input.Cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("get history page: %w", err)
	}
	return page, nil
}
