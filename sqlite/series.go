package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/mangaingest"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ mangaingest.SeriesService = (*SeriesService)(nil)

const seriesColumns = `id, slug, title, alt_titles, description, cover_url, thumbnail_url,
	authors, artists, type, status, genres, platform, release_date, created_at, updated_at`

// SeriesService implements mangaingest.SeriesService using SQLite.
type SeriesService struct {
	db *DB
}

// NewSeriesService creates a new SeriesService.
func NewSeriesService(db *DB) *SeriesService {
	return &SeriesService{db: db}
}

// CreateSeries inserts series and assigns its ID and timestamps. A slug
// that is already stored yields ECONFLICT.
func (s *SeriesService) CreateSeries(ctx context.Context, series *mangaingest.Series) error {
	if err := series.Validate(); err != nil {
		return err
	}

	series.ID = uuid.New().String()
	now := time.Now().UTC()
	series.CreatedAt = now
	series.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO series (`+seriesColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, series.ID, series.Slug, series.Title, encodeList(series.AltTitles), series.Description,
		series.CoverURL, series.ThumbnailURL, encodeList(series.Authors), encodeList(series.Artists),
		series.Type, series.Status, encodeList(series.Genres), string(series.Platform),
		formatTime(series.ReleaseDate), formatTime(series.CreatedAt), formatTime(series.UpdatedAt))
	if isUniqueViolation(err) {
		series.ID = ""
		return mangaingest.Errorf(mangaingest.ECONFLICT, "series %q already exists", series.Slug)
	}
	return err
}

// FindSeriesByID retrieves a series by ID.
func (s *SeriesService) FindSeriesByID(ctx context.Context, id string) (*mangaingest.Series, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+seriesColumns+` FROM series WHERE id = ?`, id)
	return scanSeries(row)
}

// FindSeriesBySlug retrieves a series by slug.
func (s *SeriesService) FindSeriesBySlug(ctx context.Context, slug string) (*mangaingest.Series, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+seriesColumns+` FROM series WHERE slug = ?`, slug)
	return scanSeries(row)
}

// FindFeatures returns the similarity projection of every series.
func (s *SeriesService) FindFeatures(ctx context.Context) ([]*mangaingest.Features, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, genres, authors, artists, type
		FROM series
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*mangaingest.Features
	for rows.Next() {
		var f mangaingest.Features
		var genres, authors, artists string
		if err := rows.Scan(&f.SeriesID, &genres, &authors, &artists, &f.Type); err != nil {
			return nil, err
		}
		if f.Genres, err = decodeList(genres, "genres"); err != nil {
			return nil, err
		}
		if f.Authors, err = decodeList(authors, "authors"); err != nil {
			return nil, err
		}
		if f.Artists, err = decodeList(artists, "artists"); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

func scanSeries(row *sql.Row) (*mangaingest.Series, error) {
	var series mangaingest.Series
	var altTitles, authors, artists, genres, platform string
	var releaseDate, createdAt, updatedAt string

	err := row.Scan(&series.ID, &series.Slug, &series.Title, &altTitles, &series.Description,
		&series.CoverURL, &series.ThumbnailURL, &authors, &artists, &series.Type, &series.Status,
		&genres, &platform, &releaseDate, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, mangaingest.Errorf(mangaingest.ENOTFOUND, "series not found")
	}
	if err != nil {
		return nil, err
	}
	series.Platform = mangaingest.Platform(platform)

	lists := []struct {
		dst   *[]string
		value string
		name  string
	}{
		{&series.AltTitles, altTitles, "alt_titles"},
		{&series.Authors, authors, "authors"},
		{&series.Artists, artists, "artists"},
		{&series.Genres, genres, "genres"},
	}
	for _, l := range lists {
		if *l.dst, err = decodeList(l.value, l.name); err != nil {
			return nil, err
		}
	}

	if series.ReleaseDate, err = parseRFC3339(releaseDate, "release_date"); err != nil {
		return nil, err
	}
	if series.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if series.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &series, nil
}
