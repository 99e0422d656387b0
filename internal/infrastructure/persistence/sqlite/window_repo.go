package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/keelbrowser/keel/internal/domain/entity"
	"github.com/keelbrowser/keel/internal/domain/repository"
	"github.com/keelbrowser/keel/internal/logging"
)

type windowRepo struct {
	db *sql.DB
}

// NewWindowRepository creates a SQLite-backed window repository.
func NewWindowRepository(db *sql.DB) repository.WindowRepository {
	return &windowRepo{db: db}
}

func (r *windowRepo) Create(ctx context.Context) (int64, error) {
	log := logging.FromContext(ctx)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO browser_windows (width, height) VALUES (?, ?)`,
		entity.DefaultWindowWidth, entity.DefaultWindowHeight)
	if err != nil {
		return 0, mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, mapError(err)
	}

	log.Debug().Int64("window_id", id).Msg("window created")
	return id, nil
}

func (r *windowRepo) SaveState(ctx context.Context, id int64, geo entity.Geometry) error {
	log := logging.FromContext(ctx)

	res, err := r.db.ExecContext(ctx,
		`UPDATE browser_windows
		 SET x = ?, y = ?, width = ?, height = ?, is_maximized = ?, closed_on = ?
		 WHERE id = ?`,
		geo.X, geo.Y, geo.Width, geo.Height, geo.IsMaximized, bindTime(time.Now()), id)
	if err != nil {
		return mapError(err)
	}
	if err := requireRowAffected(res); err != nil {
		return err
	}

	log.Debug().Int64("window_id", id).
		Int("width", geo.Width).Int("height", geo.Height).Bool("maximized", geo.IsMaximized).
		Msg("window state saved")
	return nil
}

func (r *windowRepo) LastClosed(ctx context.Context) (*entity.BrowserWindow, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, x, y, width, height, is_maximized, closed_on
		 FROM browser_windows
		 WHERE closed_on IS NOT NULL
		 ORDER BY closed_on DESC, id DESC
		 LIMIT 1`)
	return scanWindow(row)
}

func (r *windowRepo) FindByID(ctx context.Context, id int64) (*entity.BrowserWindow, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, x, y, width, height, is_maximized, closed_on
		 FROM browser_windows WHERE id = ?`, id)
	return scanWindow(row)
}

func (r *windowRepo) DeleteAll(ctx context.Context) error {
	log := logging.FromContext(ctx)

	res, err := r.db.ExecContext(ctx, `DELETE FROM browser_windows`)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Debug().Int64("deleted", n).Msg("all window rows cleared")
	}
	return nil
}

func scanWindow(row *sql.Row) (*entity.BrowserWindow, error) {
	var w entity.BrowserWindow
	var closedOn sql.NullTime
	err := row.Scan(&w.ID, &w.X, &w.Y, &w.Width, &w.Height, &w.IsMaximized, &closedOn)
	if err != nil {
		return nil, mapError(err)
	}
	if closedOn.Valid {
		t := closedOn.Time.UTC()
		w.ClosedOn = &t
	}
	return &w, nil
}
