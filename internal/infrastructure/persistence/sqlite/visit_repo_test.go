package sqlite_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/keelbrowser/keel/internal/domain/entity"
	"github.com/keelbrowser/keel/internal/domain/repository"
	"github.com/keelbrowser/keel/internal/infrastructure/persistence/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisitRepository_Record(t *testing.T) {
	ctx, db := openTestDB(t)
	places := sqlite.NewPlaceRepository(db)
	visits := sqlite.NewVisitRepository(db)

	placeID, err := places.GetOrCreate(ctx, examplePlace("https://example.com/"))
	require.NoError(t, err)

	visitDate := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	visitID, err := visits.Record(ctx, entity.Visit{
		PlaceID:    placeID,
		VisitDate:  visitDate,
		Transition: entity.TransitionTyped,
	})
	require.NoError(t, err)
	require.NotZero(t, visitID)

	// Both writes are observable: the visit row and the place counters
	n, err := visits.CountForPlace(ctx, placeID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	place, err := places.FindByID(ctx, placeID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), place.VisitCount)
	assert.True(t, visitDate.Equal(place.LastVisitDate), "last_visit_date %v", place.LastVisitDate)
}

func TestVisitRepository_Record_MissingPlace(t *testing.T) {
	ctx, db := openTestDB(t)
	visits := sqlite.NewVisitRepository(db)

	// The insert violates the foreign key; neither write may be observable
	_, err := visits.Record(ctx, entity.Visit{PlaceID: 424242})
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM visits`).Scan(&count))
	assert.Zero(t, count)
}

func TestVisitRepository_Record_InvalidTransition(t *testing.T) {
	ctx, db := openTestDB(t)
	visits := sqlite.NewVisitRepository(db)

	_, err := visits.Record(ctx, entity.Visit{PlaceID: 1, Transition: "teleport"})
	assert.ErrorIs(t, err, repository.ErrInvalidArgument)
}

func TestVisitRepository_GetPage_InvalidLimit(t *testing.T) {
	ctx, db := openTestDB(t)
	visits := sqlite.NewVisitRepository(db)

	_, err := visits.GetPage(ctx, nil, 0)
	assert.ErrorIs(t, err, repository.ErrInvalidArgument)

	_, err = visits.GetPage(ctx, nil, -5)
	assert.ErrorIs(t, err, repository.ErrInvalidArgument)
}

func TestVisitRepository_GetPage_DistinctPlaces(t *testing.T) {
	ctx, db := openTestDB(t)
	places := sqlite.NewPlaceRepository(db)
	visits := sqlite.NewVisitRepository(db)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	// Two places; the first is visited twice, the revisit is most recent
	first, err := places.GetOrCreate(ctx, examplePlace("https://example.com/a"))
	require.NoError(t, err)
	second, err := places.GetOrCreate(ctx, examplePlace("https://example.com/b"))
	require.NoError(t, err)

	_, err = visits.Record(ctx, entity.Visit{PlaceID: first, VisitDate: base})
	require.NoError(t, err)
	_, err = visits.Record(ctx, entity.Visit{PlaceID: second, VisitDate: base.Add(time.Minute)})
	require.NoError(t, err)
	_, err = visits.Record(ctx, entity.Visit{PlaceID: first, VisitDate: base.Add(2 * time.Minute)})
	require.NoError(t, err)

	page, err := visits.GetPage(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2, "each place appears once")
	assert.Nil(t, page.NextCursor)

	// Ordered by each place's latest visit, descending
	assert.Equal(t, first, page.Entries[0].PlaceID)
	assert.Equal(t, second, page.Entries[1].PlaceID)
}

func TestVisitRepository_GetPage_TwoPageWalk(t *testing.T) {
	ctx, db := openTestDB(t)
	places := sqlite.NewPlaceRepository(db)
	visits := sqlite.NewVisitRepository(db)

	// 150 visits to 150 distinct URLs at strictly increasing timestamps
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		placeID, err := places.GetOrCreate(ctx, examplePlace(fmt.Sprintf("https://example.com/p/%d", i)))
		require.NoError(t, err)
		_, err = visits.Record(ctx, entity.Visit{
			PlaceID:   placeID,
			VisitDate: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	page1, err := visits.GetPage(ctx, nil, 100)
	require.NoError(t, err)
	require.Len(t, page1.Entries, 100)
	require.NotNil(t, page1.NextCursor)

	page2, err := visits.GetPage(ctx, page1.NextCursor, 100)
	require.NoError(t, err)
	require.Len(t, page2.Entries, 50)
	assert.Nil(t, page2.NextCursor)

	// The union covers all 150 places with no intersection
	seen := make(map[int64]bool, 150)
	for _, e := range append(page1.Entries, page2.Entries...) {
		assert.False(t, seen[e.PlaceID], "place %d returned twice", e.PlaceID)
		seen[e.PlaceID] = true
	}
	assert.Len(t, seen, 150)
}

func TestVisitRepository_GetPage_TimestampTieBreak(t *testing.T) {
	ctx, db := openTestDB(t)
	places := sqlite.NewPlaceRepository(db)
	visits := sqlite.NewVisitRepository(db)

	// Five places, all visited at the identical timestamp: ordering falls
	// back to visit id descending and pagination must neither skip nor
	// repeat across page boundaries.
	when := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	visitIDs := make([]int64, 0, 5)
	for i := 0; i < 5; i++ {
		placeID, err := places.GetOrCreate(ctx, examplePlace(fmt.Sprintf("https://tie.example.com/%d", i)))
		require.NoError(t, err)
		visitID, err := visits.Record(ctx, entity.Visit{PlaceID: placeID, VisitDate: when})
		require.NoError(t, err)
		visitIDs = append(visitIDs, visitID)
	}

	var walked []int64
	var cursor *entity.HistoryCursor
	for {
		page, err := visits.GetPage(ctx, cursor, 2)
		require.NoError(t, err)
		for _, e := range page.Entries {
			walked = append(walked, e.VisitID)
		}
		if page.NextCursor == nil {
			break
		}
		cursor = page.NextCursor
	}

	require.Len(t, walked, 5)
	// Highest visit id first, strictly descending, every row exactly once
	for i := 1; i < len(walked); i++ {
		assert.Greater(t, walked[i-1], walked[i])
	}
	assert.Equal(t, visitIDs[4], walked[0])
	assert.Equal(t, visitIDs[0], walked[4])
}

func TestVisitRepository_GetPage_SubSecondOrdering(t *testing.T) {
	ctx, db := openTestDB(t)
	places := sqlite.NewPlaceRepository(db)
	visits := sqlite.NewVisitRepository(db)

	// Fractional seconds of different lengths, in chronological order: .5s
	// would sort after .52s under a trimmed-zero text encoding.
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	dates := []time.Time{
		base,
		base.Add(500 * time.Millisecond),
		base.Add(520 * time.Millisecond),
		base.Add(520*time.Millisecond + 1),
		base.Add(time.Second),
	}

	placeIDs := make([]int64, len(dates))
	for i, d := range dates {
		placeID, err := places.GetOrCreate(ctx, examplePlace(fmt.Sprintf("https://example.com/sub/%d", i)))
		require.NoError(t, err)
		placeIDs[i] = placeID
		_, err = visits.Record(ctx, entity.Visit{PlaceID: placeID, VisitDate: d})
		require.NoError(t, err)
	}

	page, err := visits.GetPage(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, len(dates))
	for i, e := range page.Entries {
		assert.Equal(t, placeIDs[len(dates)-1-i], e.PlaceID, "entry %d out of chronological order", i)
	}

	// Cursor walk with limit 1 must cross the sub-second boundaries without
	// skipping or repeating.
	var walked []int64
	var cursor *entity.HistoryCursor
	for {
		p, err := visits.GetPage(ctx, cursor, 1)
		require.NoError(t, err)
		for _, e := range p.Entries {
			walked = append(walked, e.PlaceID)
		}
		if p.NextCursor == nil {
			break
		}
		cursor = p.NextCursor
	}
	require.Len(t, walked, len(dates))
	for i, placeID := range walked {
		assert.Equal(t, placeIDs[len(dates)-1-i], placeID)
	}
}

func TestVisitRepository_Record_StoredTimeIsFixedWidth(t *testing.T) {
	ctx, db := openTestDB(t)
	places := sqlite.NewPlaceRepository(db)
	visits := sqlite.NewVisitRepository(db)

	placeID, err := places.GetOrCreate(ctx, examplePlace("https://example.com/"))
	require.NoError(t, err)
	_, err = visits.Record(ctx, entity.Visit{
		PlaceID:   placeID,
		VisitDate: time.Date(2026, 8, 1, 12, 0, 0, 500_000_000, time.UTC),
	})
	require.NoError(t, err)

	var stored string
	// CAST keeps the driver from parsing the DATETIME column into time.Time,
	// which database/sql would re-render with trimmed trailing zeros.
	require.NoError(t, db.QueryRow(`SELECT CAST(visit_date AS TEXT) FROM visits`).Scan(&stored))
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{9}Z$`, stored,
		"trailing fraction zeros must not be trimmed")
}

func TestVisitRepository_DeleteForPlaces(t *testing.T) {
	ctx, db := openTestDB(t)
	places := sqlite.NewPlaceRepository(db)
	visits := sqlite.NewVisitRepository(db)

	keep, err := places.GetOrCreate(ctx, examplePlace("https://example.com/keep"))
	require.NoError(t, err)
	drop, err := places.GetOrCreate(ctx, examplePlace("https://example.com/drop"))
	require.NoError(t, err)

	_, err = visits.Record(ctx, entity.Visit{PlaceID: keep})
	require.NoError(t, err)
	_, err = visits.Record(ctx, entity.Visit{PlaceID: drop})
	require.NoError(t, err)

	require.NoError(t, visits.DeleteForPlaces(ctx, []int64{drop}))

	// The place itself survives with zero visits and drops out of pages
	n, err := visits.CountForPlace(ctx, drop)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = places.FindByID(ctx, drop)
	require.NoError(t, err)

	page, err := visits.GetPage(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, keep, page.Entries[0].PlaceID)

	// Empty id list is a no-op
	require.NoError(t, visits.DeleteForPlaces(ctx, nil))
}

func TestVisitRepository_DeleteAll(t *testing.T) {
	ctx, db := openTestDB(t)
	places := sqlite.NewPlaceRepository(db)
	visits := sqlite.NewVisitRepository(db)

	placeID, err := places.GetOrCreate(ctx, examplePlace("https://example.com/"))
	require.NoError(t, err)
	_, err = visits.Record(ctx, entity.Visit{PlaceID: placeID})
	require.NoError(t, err)

	require.NoError(t, visits.DeleteAll(ctx))

	page, err := visits.GetPage(ctx, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Entries)

	// Place counters are intentionally left stale
	place, err := places.FindByID(ctx, placeID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), place.VisitCount)
}
