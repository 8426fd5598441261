package mangaingest

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Chapter represents an ordered release within a series.
type Chapter struct {
	ID          string    `json:"id"`
	SeriesID    string    `json:"seriesId"`
	Number      float64   `json:"number"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	ReleaseDate time.Time `json:"releaseDate"`
	Pages       []Page    `json:"pages"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Page is a single image within a chapter. Number is 1-based and equals the
// page's position in Chapter.Pages.
type Page struct {
	Number   int    `json:"number"`
	ImageURL string `json:"imageUrl"`
}

// Validate returns an error if the chapter contains invalid fields.
func (c *Chapter) Validate() error {
	if c.SeriesID == "" {
		return Errorf(EINVALID, "chapter series ID required")
	}
	if c.Number <= 0 {
		return Errorf(EINVALID, "chapter number must be positive")
	}
	if len(c.Pages) == 0 {
		return Errorf(EINVALID, "chapter requires at least one page")
	}
	for i, p := range c.Pages {
		if p.Number != i+1 {
			return Errorf(EINVALID, "page %d out of order", p.Number)
		}
		if p.ImageURL == "" {
			return Errorf(EINVALID, "page %d image URL required", p.Number)
		}
	}
	return nil
}

// NewPages numbers urls in reading order.
func NewPages(urls []string) []Page {
	pages := make([]Page, len(urls))
	for i, u := range urls {
		pages[i] = Page{Number: i + 1, ImageURL: u}
	}
	return pages
}

// ChapterService represents a service for managing chapters.
type ChapterService interface {
	// CreateChapter persists a chapter and its pages in one transaction.
	// Returns ECONFLICT if the (series, number) pair already exists.
	CreateChapter(ctx context.Context, chapter *Chapter) error

	// FindChapter retrieves a chapter with its pages.
	// Returns ENOTFOUND if chapter does not exist.
	FindChapter(ctx context.Context, seriesID string, number float64) (*Chapter, error)
}

// FormatChapterNumber renders n without a trailing ".0" ("5", "10.5").
func FormatChapterNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// PadChapterNumber renders n with the integer part zero-padded to two
// digits ("05", "05.5", "12").
func PadChapterNumber(n float64) string {
	if n >= 0 && n < 10 {
		return "0" + FormatChapterNumber(n)
	}
	return FormatChapterNumber(n)
}

// DefaultChapterTitle is used when a chapter page carries no title.
func DefaultChapterTitle(n float64) string {
	return fmt.Sprintf("Chapter %s", FormatChapterNumber(n))
}
