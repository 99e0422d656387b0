package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/keelbrowser/keel/internal/domain/entity"
	"github.com/keelbrowser/keel/internal/domain/repository"
	"github.com/keelbrowser/keel/internal/logging"
)

type visitRepo struct {
	db *sql.DB
}

// NewVisitRepository creates a SQLite-backed visit repository.
func NewVisitRepository(db *sql.DB) repository.VisitRepository {
	return &visitRepo{db: db}
}

func (r *visitRepo) Record(ctx context.Context, visit entity.Visit) (int64, error) {
	log := logging.FromContext(ctx)

	if visit.PlaceID == 0 {
		return 0, repository.ErrInvalidArgument
	}
	transition := visit.Transition
	if transition == "" {
		transition = entity.TransitionLink
	}
	if !transition.Valid() {
		return 0, repository.ErrInvalidArgument
	}
	visitDate := visit.VisitDate
	if visitDate.IsZero() {
		visitDate = time.Now().UTC()
	}

	// The visit insert and the place counter update must commit together or
	// not at all.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, mapError(err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO visits (place_id, visit_date, referrer, transition_type)
		 VALUES (?, ?, ?, ?)`,
		visit.PlaceID, bindTime(visitDate), visit.Referrer, string(transition))
	if err != nil {
		return 0, mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, mapError(err)
	}

	upd, err := tx.ExecContext(ctx,
		`UPDATE places SET visit_count = visit_count + 1, last_visit_date = ?
		 WHERE id = ?`,
		bindTime(visitDate), visit.PlaceID)
	if err != nil {
		return 0, mapError(err)
	}
	if n, raErr := upd.RowsAffected(); raErr != nil {
		return 0, mapError(raErr)
	} else if n == 0 {
		return 0, repository.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, mapError(err)
	}

	log.Debug().
		Int64("visit_id", id).
		Int64("place_id", visit.PlaceID).
		Str("transition", string(transition)).
		Msg("visit recorded")

	return id, nil
}

// historyPageQuery selects, per place, its latest visit (visit_date then id
// descending), then applies the keyset condition and page ordering on those
// head visits.
const historyPageQuery = `
WITH latest AS (
	SELECT id, place_id, visit_date,
	       ROW_NUMBER() OVER (
	           PARTITION BY place_id
	           ORDER BY visit_date DESC, id DESC
	       ) AS rn
	FROM visits
)
SELECT v.id, v.visit_date,
       p.id, p.url, p.title, p.favicon_url, p.hostname, p.is_bookmarked
FROM latest v
JOIN places p ON p.id = v.place_id
WHERE v.rn = 1 %s
ORDER BY v.visit_date DESC, v.id DESC
LIMIT ?`

func (r *visitRepo) GetPage(ctx context.Context, cursor *entity.HistoryCursor, limit int) (*entity.HistoryPage, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be >= 1, got %d", repository.ErrInvalidArgument, limit)
	}

	var (
		cond string
		args []any
	)
	if cursor != nil {
		cond = `AND (v.visit_date < ? OR (v.visit_date = ? AND v.id < ?))`
		cursorDate := bindTime(cursor.VisitDate)
		args = append(args, cursorDate, cursorDate, cursor.VisitID)
	}
	// Fetch one extra row to learn whether another page exists without a
	// count query.
	args = append(args, limit+1)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(historyPageQuery, cond), args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]entity.HistoryEntry, 0, limit+1)
	for rows.Next() {
		var e entity.HistoryEntry
		if err := rows.Scan(&e.VisitID, &e.VisitDate,
			&e.PlaceID, &e.URL, &e.Title, &e.FaviconURL, &e.Hostname, &e.IsBookmarked); err != nil {
			return nil, mapError(err)
		}
		e.VisitDate = e.VisitDate.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	page := &entity.HistoryPage{}
	if len(entries) > limit {
		last := entries[limit-1]
		page.Entries = entries[:limit]
		page.NextCursor = &entity.HistoryCursor{
			VisitDate: last.VisitDate,
			VisitID:   last.VisitID,
		}
	} else {
		page.Entries = entries
	}

	return page, nil
}

func (r *visitRepo) DeleteForPlaces(ctx context.Context, placeIDs []int64) error {
	log := logging.FromContext(ctx)

	if len(placeIDs) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(placeIDs)), ",")
	args := make([]any, len(placeIDs))
	for i, id := range placeIDs {
		args[i] = id
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM visits WHERE place_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return mapError(err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		log.Debug().Int64("deleted", n).Int("places", len(placeIDs)).Msg("history entries deleted")
	}
	return nil
}

func (r *visitRepo) DeleteAll(ctx context.Context) error {
	log := logging.FromContext(ctx)

	res, err := r.db.ExecContext(ctx, `DELETE FROM visits`)
	if err != nil {
		return mapError(err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		log.Info().Int64("deleted", n).Msg("history cleared")
	}
	return nil
}

func (r *visitRepo) CountForPlace(ctx context.Context, placeID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visits WHERE place_id = ?`, placeID).Scan(&n)
	if err != nil {
		return 0, mapError(err)
	}
	return n, nil
}
