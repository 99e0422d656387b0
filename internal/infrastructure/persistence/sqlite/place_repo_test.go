package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/keelbrowser/keel/internal/domain/entity"
	"github.com/keelbrowser/keel/internal/domain/repository"
	"github.com/keelbrowser/keel/internal/infrastructure/persistence/sqlite"
	"github.com/keelbrowser/keel/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func testCtx() context.Context {
	logger := logging.NewFromConfigValues("debug", "console")
	return logging.WithContext(context.Background(), logger)
}

func openTestDB(t *testing.T) (context.Context, *sql.DB) {
	t.Helper()
	ctx := testCtx()
	dbPath := filepath.Join(t.TempDir(), "keel.db")

	db, err := sqlite.NewConnection(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return ctx, db
}

func examplePlace(normalized string) entity.Place {
	return entity.Place{
		URL:           normalized,
		NormalizedURL: normalized,
		Hostname:      "example.com",
		Path:          "/",
		LastVisitDate: time.Now().UTC(),
	}
}

func TestPlaceRepository_GetOrCreate(t *testing.T) {
	ctx, db := openTestDB(t)
	repo := sqlite.NewPlaceRepository(db)

	id, err := repo.GetOrCreate(ctx, examplePlace("https://example.com/"))
	require.NoError(t, err)
	require.NotZero(t, id)

	// Same normalized URL resolves to the same place
	again, err := repo.GetOrCreate(ctx, examplePlace("https://example.com/"))
	require.NoError(t, err)
	assert.Equal(t, id, again)

	// A different normalized URL creates a new place
	other, err := repo.GetOrCreate(ctx, examplePlace("https://example.org/"))
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestPlaceRepository_GetOrCreate_Concurrent(t *testing.T) {
	ctx, db := openTestDB(t)
	repo := sqlite.NewPlaceRepository(db)

	const workers = 8
	ids := make([]int64, workers)

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			id, err := repo.GetOrCreate(ctx, examplePlace("https://example.com/race"))
			ids[i] = id
			return err
		})
	}
	require.NoError(t, g.Wait())

	// Every caller received the same id
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	// Exactly one row exists
	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM places WHERE normalized_url = ?`,
		"https://example.com/race").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestPlaceRepository_Update_Partial(t *testing.T) {
	ctx, db := openTestDB(t)
	repo := sqlite.NewPlaceRepository(db)

	place := examplePlace("https://example.com/")
	place.Title = "Original"
	place.FaviconURL = "https://example.com/favicon.ico"
	id, err := repo.GetOrCreate(ctx, place)
	require.NoError(t, err)

	// Only the title is supplied: the favicon must be untouched
	newTitle := "Updated"
	require.NoError(t, repo.Update(ctx, id, repository.PlaceUpdate{Title: &newTitle}))

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title)
	assert.Equal(t, "https://example.com/favicon.ico", got.FaviconURL)

	// Empty update is a no-op, not an error
	require.NoError(t, repo.Update(ctx, id, repository.PlaceUpdate{}))
}

func TestPlaceRepository_Update_NotFound(t *testing.T) {
	ctx, db := openTestDB(t)
	repo := sqlite.NewPlaceRepository(db)

	title := "ghost"
	err := repo.Update(ctx, 9999, repository.PlaceUpdate{Title: &title})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPlaceRepository_FindByNormalizedURL_NotFound(t *testing.T) {
	ctx, db := openTestDB(t)
	repo := sqlite.NewPlaceRepository(db)

	_, err := repo.FindByNormalizedURL(ctx, "https://nowhere.invalid/")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPlaceRepository_Bookmark(t *testing.T) {
	ctx, db := openTestDB(t)
	repo := sqlite.NewPlaceRepository(db)

	id, err := repo.GetOrCreate(ctx, examplePlace("https://example.com/"))
	require.NoError(t, err)

	require.NoError(t, repo.SetBookmarked(ctx, id, true))
	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsBookmarked)

	require.NoError(t, repo.SetBookmarked(ctx, id, false))
	got, err = repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.IsBookmarked)

	assert.ErrorIs(t, repo.SetBookmarked(ctx, 9999, true), repository.ErrNotFound)
}

func TestPlaceRepository_IncrementTypedCount(t *testing.T) {
	ctx, db := openTestDB(t)
	repo := sqlite.NewPlaceRepository(db)

	id, err := repo.GetOrCreate(ctx, examplePlace("https://example.com/"))
	require.NoError(t, err)

	require.NoError(t, repo.IncrementTypedCount(ctx, id))
	require.NoError(t, repo.IncrementTypedCount(ctx, id))

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TypedCount)
}
