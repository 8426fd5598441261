package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/mangaingest"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ mangaingest.ChapterService = (*ChapterService)(nil)

// ChapterService implements mangaingest.ChapterService using SQLite.
type ChapterService struct {
	db *DB
}

// NewChapterService creates a new ChapterService.
func NewChapterService(db *DB) *ChapterService {
	return &ChapterService{db: db}
}

// CreateChapter inserts the chapter and its pages in one transaction. An
// existing (series, number) pair yields ECONFLICT and writes nothing.
func (s *ChapterService) CreateChapter(ctx context.Context, chapter *mangaingest.Chapter) error {
	if err := chapter.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := uuid.New().String()
	createdAt := time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chapters (id, series_id, number, title, slug, release_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, chapter.SeriesID, chapter.Number, chapter.Title, chapter.Slug,
		formatTime(chapter.ReleaseDate), formatTime(createdAt))
	if isUniqueViolation(err) {
		return mangaingest.Errorf(mangaingest.ECONFLICT, "chapter %s of series %s already exists",
			mangaingest.FormatChapterNumber(chapter.Number), chapter.SeriesID)
	}
	if err != nil {
		return err
	}

	for _, p := range chapter.Pages {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pages (chapter_id, number, image_url) VALUES (?, ?, ?)
		`, id, p.Number, p.ImageURL); err != nil {
			return fmt.Errorf("failed to insert page %d: %w", p.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	chapter.ID = id
	chapter.CreatedAt = createdAt
	return nil
}

// FindChapter retrieves a chapter and its pages in reading order.
func (s *ChapterService) FindChapter(ctx context.Context, seriesID string, number float64) (*mangaingest.Chapter, error) {
	var chapter mangaingest.Chapter
	var releaseDate, createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, series_id, number, title, slug, release_date, created_at
		FROM chapters
		WHERE series_id = ? AND number = ?
	`, seriesID, number).Scan(&chapter.ID, &chapter.SeriesID, &chapter.Number, &chapter.Title,
		&chapter.Slug, &releaseDate, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, mangaingest.Errorf(mangaingest.ENOTFOUND, "chapter not found")
	}
	if err != nil {
		return nil, err
	}

	if chapter.ReleaseDate, err = parseRFC3339(releaseDate, "release_date"); err != nil {
		return nil, err
	}
	if chapter.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT number, image_url FROM pages WHERE chapter_id = ? ORDER BY number
	`, chapter.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p mangaingest.Page
		if err := rows.Scan(&p.Number, &p.ImageURL); err != nil {
			return nil, err
		}
		chapter.Pages = append(chapter.Pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &chapter, nil
}
