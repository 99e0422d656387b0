package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/keelbrowser/keel/internal/domain/entity"
	"github.com/keelbrowser/keel/internal/domain/repository"
	"github.com/keelbrowser/keel/internal/logging"
)

const logURLMaxLen = 60

type placeRepo struct {
	db *sql.DB
}

// NewPlaceRepository creates a SQLite-backed place repository.
func NewPlaceRepository(db *sql.DB) repository.PlaceRepository {
	return &placeRepo{db: db}
}

const placeColumns = `id, url, normalized_url, hostname, path, title, favicon_url,
	visit_count, last_visit_date, typed_count, is_bookmarked`

func (r *placeRepo) GetOrCreate(ctx context.Context, place entity.Place) (int64, error) {
	log := logging.FromContext(ctx)

	if place.NormalizedURL == "" {
		return 0, repository.ErrInvalidArgument
	}

	existing, err := r.FindByNormalizedURL(ctx, place.NormalizedURL)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}

	lastVisit := place.LastVisitDate
	if lastVisit.IsZero() {
		lastVisit = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO places (url, normalized_url, hostname, path, title, favicon_url, last_visit_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		place.URL, place.NormalizedURL, place.Hostname, place.Path,
		place.Title, place.FaviconURL, bindTime(lastVisit))
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, repository.ErrConstraintViolation) {
			// Lost the creation race; the winner's row is authoritative.
			log.Debug().
				Str("url", logging.TruncateURL(place.NormalizedURL, logURLMaxLen)).
				Msg("place insert lost unique race, retrying as lookup")
			winner, lookupErr := r.FindByNormalizedURL(ctx, place.NormalizedURL)
			if lookupErr != nil {
				return 0, lookupErr
			}
			return winner.ID, nil
		}
		return 0, mapped
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, mapError(err)
	}

	log.Debug().
		Int64("place_id", id).
		Str("url", logging.TruncateURL(place.NormalizedURL, logURLMaxLen)).
		Msg("place created")

	return id, nil
}

func (r *placeRepo) FindByNormalizedURL(ctx context.Context, normalizedURL string) (*entity.Place, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+placeColumns+` FROM places WHERE normalized_url = ?`, normalizedURL)
	return scanPlace(row)
}

func (r *placeRepo) FindByID(ctx context.Context, id int64) (*entity.Place, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+placeColumns+` FROM places WHERE id = ?`, id)
	return scanPlace(row)
}

func (r *placeRepo) Update(ctx context.Context, id int64, upd repository.PlaceUpdate) error {
	// Partial update: only supplied fields are written. COALESCE keeps the
	// statement a single round-trip regardless of which fields are set.
	if upd.Title == nil && upd.FaviconURL == nil {
		return nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE places SET
			title = COALESCE(?, title),
			favicon_url = COALESCE(?, favicon_url)
		 WHERE id = ?`,
		nullString(upd.Title), nullString(upd.FaviconURL), id)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(res)
}

func (r *placeRepo) IncrementTypedCount(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE places SET typed_count = typed_count + 1 WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(res)
}

func (r *placeRepo) SetBookmarked(ctx context.Context, id int64, bookmarked bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE places SET is_bookmarked = ? WHERE id = ?`, bookmarked, id)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(res)
}

func scanPlace(row *sql.Row) (*entity.Place, error) {
	var p entity.Place
	err := row.Scan(&p.ID, &p.URL, &p.NormalizedURL, &p.Hostname, &p.Path,
		&p.Title, &p.FaviconURL, &p.VisitCount, &p.LastVisitDate,
		&p.TypedCount, &p.IsBookmarked)
	if err != nil {
		return nil, mapError(err)
	}
	p.LastVisitDate = p.LastVisitDate.UTC()
	return &p, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
