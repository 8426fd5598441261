package mangaingest

import (
	"context"
	"unicode/utf8"
)

// Request limits.
const (
	MinTitleLength    = 3
	MaxTitleLength    = 100
	MaxChapterNumbers = 100
	MinSeriesIDLength = 3
	MaxSeriesIDLength = 100
)

// SeriesRequest asks for a series to be scraped and stored.
type SeriesRequest struct {
	Title    string   `json:"title"`
	Platform Platform `json:"platform"`
}

// Validate returns an error if the request contains invalid fields.
func (r *SeriesRequest) Validate() error {
	n := utf8.RuneCountInString(r.Title)
	if n < MinTitleLength || n > MaxTitleLength {
		return Errorf(EINVALID, "title must be between %d and %d characters", MinTitleLength, MaxTitleLength)
	}
	if r.Platform != "" && !r.Platform.Valid() {
		return Errorf(EUNSUPPORTED, "unsupported platform %q", r.Platform)
	}
	return nil
}

// ChapterRequest asks for one chapter of a stored series.
type ChapterRequest struct {
	SeriesID string  `json:"seriesId"`
	Number   float64 `json:"chapterNumber"`
}

// Validate returns an error if the request contains invalid fields.
func (r *ChapterRequest) Validate() error {
	if err := validateSeriesID(r.SeriesID); err != nil {
		return err
	}
	if r.Number < 1 {
		return Errorf(EINVALID, "chapter number must be at least 1")
	}
	return nil
}

// ChaptersRequest asks for several chapters of a stored series. Each number
// is ingested independently.
type ChaptersRequest struct {
	SeriesID       string    `json:"seriesId"`
	ChapterNumbers []float64 `json:"chapterNumbers"`
}

// Validate returns an error if the request contains invalid fields.
func (r *ChaptersRequest) Validate() error {
	if err := validateSeriesID(r.SeriesID); err != nil {
		return err
	}
	if len(r.ChapterNumbers) == 0 || len(r.ChapterNumbers) > MaxChapterNumbers {
		return Errorf(EINVALID, "between 1 and %d chapter numbers required", MaxChapterNumbers)
	}
	for _, n := range r.ChapterNumbers {
		if n < 1 {
			return Errorf(EINVALID, "chapter number must be at least 1")
		}
	}
	return nil
}

func validateSeriesID(id string) error {
	n := utf8.RuneCountInString(id)
	if n < MinSeriesIDLength || n > MaxSeriesIDLength {
		return Errorf(EINVALID, "series ID must be between %d and %d characters", MinSeriesIDLength, MaxSeriesIDLength)
	}
	return nil
}

// ChapterResult is the outcome of one number within a ChaptersRequest.
type ChapterResult struct {
	Number  float64
	Chapter *Chapter
	Err     error
}

// Ingester runs the ingestion workflow.
type Ingester interface {
	// IngestSeries scrapes, uploads and stores a new series.
	// Returns ECONFLICT if a series with the same slug exists.
	IngestSeries(ctx context.Context, req SeriesRequest) (*Series, error)

	// IngestChapter scrapes, uploads and stores one chapter.
	// Returns ECONFLICT if the chapter already exists.
	IngestChapter(ctx context.Context, req ChapterRequest) (*Chapter, error)

	// IngestChapters ingests each requested number independently and
	// returns one result per number in request order.
	IngestChapters(ctx context.Context, req ChaptersRequest) ([]ChapterResult, error)
}
