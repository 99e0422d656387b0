package usecase_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/keelbrowser/keel/internal/application/usecase"
	"github.com/keelbrowser/keel/internal/domain/entity"
	"github.com/keelbrowser/keel/internal/domain/repository"
	"github.com/keelbrowser/keel/internal/infrastructure/persistence/sqlite"
	"github.com/keelbrowser/keel/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (context.Context, *sql.DB) {
	t.Helper()
	logger := logging.NewFromConfigValues("debug", "console")
	ctx := logging.WithContext(context.Background(), logger)

	db, err := sqlite.NewConnection(ctx, filepath.Join(t.TempDir(), "keel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return ctx, db
}

func TestRecordVisit_DeduplicatesURLVariants(t *testing.T) {
	ctx, db := openTestStore(t)
	places := sqlite.NewPlaceRepository(db)
	visits := sqlite.NewVisitRepository(db)
	uc := usecase.NewRecordVisitUseCase(places, visits)

	variants := []string{
		"https://example.com/page",
		"HTTPS://EXAMPLE.COM/page",
		"https://example.com:443/page",
		"https://example.com/page#comments",
	}

	var placeID int64
	for i, url := range variants {
		out, err := uc.Execute(ctx, usecase.RecordVisitInput{URL: url, Transition: entity.TransitionLink})
		require.NoError(t, err)
		require.NotNil(t, out)
		if i == 0 {
			placeID = out.PlaceID
		} else {
			assert.Equal(t, placeID, out.PlaceID, "variant %q maps to the same place", url)
		}
	}

	place, err := places.FindByID(ctx, placeID)
	require.NoError(t, err)
	assert.Equal(t, int64(len(variants)), place.VisitCount)
	assert.Equal(t, "https://example.com/page", place.NormalizedURL)
	assert.Equal(t, "example.com", place.Hostname)
	assert.Equal(t, "/page", place.Path)
}

func TestRecordVisit_AboutBlankIsNoOp(t *testing.T) {
	ctx, db := openTestStore(t)
	places := sqlite.NewPlaceRepository(db)
	visits := sqlite.NewVisitRepository(db)
	uc := usecase.NewRecordVisitUseCase(places, visits)

	out, err := uc.Execute(ctx, usecase.RecordVisitInput{URL: "about:blank"})
	require.NoError(t, err)
	assert.Nil(t, out)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM places`).Scan(&count))
	assert.Zero(t, count)
}

func TestRecordVisit_InvalidURL(t *testing.T) {
	ctx, db := openTestStore(t)
	uc := usecase.NewRecordVisitUseCase(
		sqlite.NewPlaceRepository(db), sqlite.NewVisitRepository(db))

	_, err := uc.Execute(ctx, usecase.RecordVisitInput{URL: ""})
	assert.ErrorIs(t, err, repository.ErrInvalidArgument)

	_, err = uc.Execute(ctx, usecase.RecordVisitInput{URL: "example.com/no-scheme"})
	assert.ErrorIs(t, err, repository.ErrInvalidArgument)
}

func TestRecordVisit_MetadataRefresh(t *testing.T) {
	ctx, db := openTestStore(t)
	places := sqlite.NewPlaceRepository(db)
	uc := usecase.NewRecordVisitUseCase(places, sqlite.NewVisitRepository(db))

	out, err := uc.Execute(ctx, usecase.RecordVisitInput{
		URL:        "https://example.com/",
		Title:      "First Title",
		FaviconURL: "https://example.com/v1.ico",
		Transition: entity.TransitionLink,
	})
	require.NoError(t, err)

	// Revisit with a new title only: the favicon sticks
	_, err = uc.Execute(ctx, usecase.RecordVisitInput{
		URL:        "https://example.com/",
		Title:      "Second Title",
		Transition: entity.TransitionLink,
	})
	require.NoError(t, err)

	place, err := places.FindByID(ctx, out.PlaceID)
	require.NoError(t, err)
	assert.Equal(t, "Second Title", place.Title)
	assert.Equal(t, "https://example.com/v1.ico", place.FaviconURL)
}

func TestRecordVisit_TypedCount(t *testing.T) {
	ctx, db := openTestStore(t)
	places := sqlite.NewPlaceRepository(db)
	uc := usecase.NewRecordVisitUseCase(places, sqlite.NewVisitRepository(db))

	out, err := uc.Execute(ctx, usecase.RecordVisitInput{
		URL: "https://example.com/", Transition: entity.TransitionTyped})
	require.NoError(t, err)
	_, err = uc.Execute(ctx, usecase.RecordVisitInput{
		URL: "https://example.com/", Transition: entity.TransitionLink})
	require.NoError(t, err)
	_, err = uc.Execute(ctx, usecase.RecordVisitInput{
		URL: "https://example.com/", Transition: entity.TransitionTyped})
	require.NoError(t, err)

	place, err := places.FindByID(ctx, out.PlaceID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), place.VisitCount)
	assert.Equal(t, int64(2), place.TypedCount, "only typed navigations count")
}
