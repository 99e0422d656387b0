package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/keelbrowser/keel/internal/domain/entity"
	"github.com/keelbrowser/keel/internal/domain/repository"
	"github.com/keelbrowser/keel/internal/logging"
)

type tabRepo struct {
	db *sql.DB
}

// NewTabRepository creates a SQLite-backed tab repository.
func NewTabRepository(db *sql.DB) repository.TabRepository {
	return &tabRepo{db: db}
}

func (r *tabRepo) Create(ctx context.Context, windowID int64) (int64, error) {
	log := logging.FromContext(ctx)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tabs (browser_window_id) VALUES (?)`, windowID)
	if err != nil {
		return 0, mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, mapError(err)
	}

	log.Debug().Int64("tab_id", id).Int64("window_id", windowID).Msg("tab created")
	return id, nil
}

func (r *tabRepo) Update(ctx context.Context, id int64, upd repository.TabUpdate) error {
	if upd.Index == nil && upd.IsSelected == nil && upd.PlaceID == nil && upd.WindowID == nil {
		return nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE tabs SET
			tab_index = COALESCE(?, tab_index),
			is_selected = COALESCE(?, is_selected),
			place_id = COALESCE(?, place_id),
			browser_window_id = COALESCE(?, browser_window_id)
		 WHERE id = ?`,
		nullInt(upd.Index), nullBool(upd.IsSelected),
		nullInt64(upd.PlaceID), nullInt64(upd.WindowID), id)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(res)
}

func (r *tabRepo) Close(ctx context.Context, id int64) error {
	log := logging.FromContext(ctx)

	// Closing an already-closed tab is a no-op; closed_on keeps its original
	// stamp so the undo stack order is preserved.
	res, err := r.db.ExecContext(ctx,
		`UPDATE tabs SET closed_on = ? WHERE id = ? AND closed_on IS NULL`,
		bindTime(time.Now()), id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Debug().Int64("tab_id", id).Msg("tab soft-closed")
	}
	return nil
}

func (r *tabRepo) PopClosed(ctx context.Context) (*entity.Tab, error) {
	log := logging.FromContext(ctx)

	// Select-newest-closed and clear-closed_on run in one transaction so two
	// concurrent reopen requests cannot claim the same row.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT id, tab_index, is_selected, closed_on, browser_window_id, place_id
		 FROM tabs
		 WHERE closed_on IS NOT NULL
		 ORDER BY closed_on DESC, id DESC
		 LIMIT 1`)

	var t entity.Tab
	var closedOn sql.NullTime
	var placeID sql.NullInt64
	if err := row.Scan(&t.ID, &t.Index, &t.IsSelected, &closedOn, &t.WindowID, &placeID); err != nil {
		return nil, mapError(err)
	}
	if placeID.Valid {
		t.PlaceID = &placeID.Int64
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE tabs SET closed_on = NULL WHERE id = ?`, t.ID); err != nil {
		return nil, mapError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError(err)
	}

	// Returned reopened: closed_on is cleared on the entity as in the store.
	t.ClosedOn = nil

	log.Debug().Int64("tab_id", t.ID).Msg("closed tab reopened")
	return &t, nil
}

func (r *tabRepo) Open(ctx context.Context, windowID int64) ([]*entity.Tab, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.tab_index, t.is_selected, t.browser_window_id, t.place_id,
		        p.id, p.url, p.normalized_url, p.hostname, p.path, p.title,
		        p.favicon_url, p.visit_count, p.last_visit_date, p.typed_count, p.is_bookmarked
		 FROM tabs t
		 LEFT JOIN places p ON p.id = t.place_id
		 WHERE t.browser_window_id = ? AND t.closed_on IS NULL
		 ORDER BY t.tab_index ASC`, windowID)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tabs []*entity.Tab
	for rows.Next() {
		var t entity.Tab
		var placeID sql.NullInt64
		var pID sql.NullInt64
		var pURL, pNorm, pHost, pPath, pTitle, pFavicon sql.NullString
		var pVisits, pTyped sql.NullInt64
		var pLastVisit sql.NullTime
		var pBookmarked sql.NullBool

		if err := rows.Scan(&t.ID, &t.Index, &t.IsSelected, &t.WindowID, &placeID,
			&pID, &pURL, &pNorm, &pHost, &pPath, &pTitle,
			&pFavicon, &pVisits, &pLastVisit, &pTyped, &pBookmarked); err != nil {
			return nil, mapError(err)
		}
		if placeID.Valid {
			t.PlaceID = &placeID.Int64
		}
		if pID.Valid {
			t.Place = &entity.Place{
				ID:            pID.Int64,
				URL:           pURL.String,
				NormalizedURL: pNorm.String,
				Hostname:      pHost.String,
				Path:          pPath.String,
				Title:         pTitle.String,
				FaviconURL:    pFavicon.String,
				VisitCount:    pVisits.Int64,
				LastVisitDate: pLastVisit.Time.UTC(),
				TypedCount:    pTyped.Int64,
				IsBookmarked:  pBookmarked.Bool,
			}
		}
		tabs = append(tabs, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return tabs, nil
}

func (r *tabRepo) Delete(ctx context.Context, id int64) error {
	// Deleting an already-deleted tab is idempotent.
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tabs WHERE id = ?`, id); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *tabRepo) DeleteAll(ctx context.Context) error {
	log := logging.FromContext(ctx)

	res, err := r.db.ExecContext(ctx, `DELETE FROM tabs`)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Debug().Int64("deleted", n).Msg("all tab rows cleared")
	}
	return nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}
