// Package usecase contains the application services driving the history and
// session repositories.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keelbrowser/keel/internal/domain/entity"
	"github.com/keelbrowser/keel/internal/domain/repository"
	"github.com/keelbrowser/keel/internal/logging"
	"github.com/keelbrowser/keel/internal/urlnorm"
)

// RecordVisitUseCase records a navigation event: it deduplicates the URL into
// a place and appends a visit.
type RecordVisitUseCase struct {
	places repository.PlaceRepository
	visits repository.VisitRepository
}

// NewRecordVisitUseCase creates a new RecordVisitUseCase.
func NewRecordVisitUseCase(
	places repository.PlaceRepository,
	visits repository.VisitRepository,
) *RecordVisitUseCase {
	return &RecordVisitUseCase{places: places, visits: visits}
}

// RecordVisitInput contains the parameters of one navigation.
type RecordVisitInput struct {
	URL        string
	Title      string
	FaviconURL string
	Referrer   string
	Transition entity.TransitionType
}

// RecordVisitOutput reports the place the visit was attributed to.
type RecordVisitOutput struct {
	PlaceID int64
	VisitID int64
}

// Execute records a visit. Navigations to about:blank are a no-op: blank
// pages never become places.
func (uc *RecordVisitUseCase) Execute(ctx context.Context, input RecordVisitInput) (*RecordVisitOutput, error) {
	log := logging.FromContext(ctx)

	normalized, err := urlnorm.Normalize(input.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrInvalidArgument, err)
	}
	if normalized == urlnorm.AboutBlank {
		return nil, nil
	}

	hostname, path := urlnorm.Parts(normalized)
	placeID, err := uc.places.GetOrCreate(ctx, entity.Place{
		URL:           input.URL,
		NormalizedURL: normalized,
		Hostname:      hostname,
		Path:          path,
		Title:         input.Title,
		FaviconURL:    input.FaviconURL,
		LastVisitDate: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("get or create place: %w", err)
	}

	visitID, err := uc.visits.Record(ctx, entity.Visit{
		PlaceID:    placeID,
		Referrer:   input.Referrer,
		Transition: input.Transition,
	})
	if err != nil {
		return nil, fmt.Errorf("record visit: %w", err)
	}

	// Refresh mutable metadata on revisits. A concurrent history clear can
	// remove the place between the writes; treat that as stale and move on.
	if upd := placeMetadataUpdate(input); upd != nil {
		if err := uc.places.Update(ctx, placeID, *upd); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("update place metadata: %w", err)
		}
	}

	if input.Transition == entity.TransitionTyped {
		if err := uc.places.IncrementTypedCount(ctx, placeID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("increment typed count: %w", err)
		}
	}

	log.Debug().
		Int64("place_id", placeID).
		Str("url", logging.TruncateURL(normalized, 60)).
		Msg("navigation recorded")

	return &RecordVisitOutput{PlaceID: placeID, VisitID: visitID}, nil
}

func placeMetadataUpdate(input RecordVisitInput) *repository.PlaceUpdate {
	var upd repository.PlaceUpdate
	if input.Title != "" {
		upd.Title = &input.Title
	}
	if input.FaviconURL != "" {
		upd.FaviconURL = &input.FaviconURL
	}
	if upd.Title == nil && upd.FaviconURL == nil {
		return nil
	}
	return &upd
}
