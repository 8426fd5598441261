package mangaingest

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// Series represents a serialized work scraped from a source platform.
type Series struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	AltTitles    []string  `json:"altTitles"`
	Description  string    `json:"description"`
	CoverURL     string    `json:"coverUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Authors      []string  `json:"authors"`
	Artists      []string  `json:"artists"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	Genres       []string  `json:"genres"`
	Platform     Platform  `json:"platform"`
	ReleaseDate  time.Time `json:"releaseDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Validate returns an error if the series contains invalid fields.
func (s *Series) Validate() error {
	if s.Title == "" {
		return Errorf(EINVALID, "series title required")
	}
	if s.Slug == "" {
		return Errorf(EINVALID, "series slug required")
	}
	if !s.Platform.Valid() {
		return Errorf(EINVALID, "series platform %q invalid", s.Platform)
	}
	if s.CoverURL == "" {
		return Errorf(EINVALID, "series cover required")
	}
	return nil
}

// Features returns the projection of s used for similarity scoring.
func (s *Series) Features() Features {
	return Features{
		SeriesID: s.ID,
		Genres:   s.Genres,
		Authors:  s.Authors,
		Artists:  s.Artists,
		Type:     s.Type,
	}
}

// Features is the subset of a series compared by the similarity engine.
type Features struct {
	SeriesID string
	Genres   []string
	Authors  []string
	Artists  []string
	Type     string
}

// SeriesService represents a service for managing series.
type SeriesService interface {
	// CreateSeries persists a new series and assigns its ID.
	// Returns ECONFLICT if a series with the same slug already exists.
	CreateSeries(ctx context.Context, series *Series) error

	// FindSeriesByID retrieves a series by ID.
	// Returns ENOTFOUND if series does not exist.
	FindSeriesByID(ctx context.Context, id string) (*Series, error)

	// FindSeriesBySlug retrieves a series by its canonical slug.
	// Returns ENOTFOUND if series does not exist.
	FindSeriesBySlug(ctx context.Context, slug string) (*Series, error)

	// FindFeatures returns the similarity projection of every series.
	FindFeatures(ctx context.Context) ([]*Features, error)
}

// Slugify derives a URL-safe slug from a title. Letters and digits are kept
// and lowercased; every other run of characters becomes a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		// Apostrophes join words ("Hell's" -> "hells").
		if r == '\'' || r == '’' {
			continue
		}
		pendingDash = true
	}
	return b.String()
}
