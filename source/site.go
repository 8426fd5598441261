// Package source turns site pages into canonical series and chapter records.
// Each supported site is a Site table entry interpreted by one generic
// Adapter.
package source

import (
	"strings"

	"github.com/fwojciec/mangaingest"
)

// Field names shared by every site table.
const (
	FieldTitle        = "title"
	FieldAltTitles    = "altTitles"
	FieldDescription  = "description"
	FieldCover        = "cover"
	FieldAuthors      = "authors"
	FieldArtists      = "artists"
	FieldType         = "type"
	FieldStatus       = "status"
	FieldGenres       = "genres"
	FieldReleaseDate  = "releaseDate"
	FieldPages        = "pages"
	FieldChapterTitle = "chapterTitle"
	FieldChapterDate  = "chapterDate"
)

// ChapterFormat renders a chapter number into a URL path segment.
type ChapterFormat int

const (
	// FormatRaw renders 5 as "5" and 10.5 as "10.5".
	FormatRaw ChapterFormat = iota
	// FormatPadded renders 5 as "05".
	FormatPadded
)

// Apply renders n.
func (f ChapterFormat) Apply(n float64) string {
	if f == FormatPadded {
		return mangaingest.PadChapterNumber(n)
	}
	return mangaingest.FormatChapterNumber(n)
}

// Site describes how to scrape one platform.
type Site struct {
	Platform mangaingest.Platform
	BaseURL  string

	// Browser routes every request through the EvasionRunner.
	Browser bool

	// SeriesPath and ChapterPath are templates with {slug} and {chapter}
	// placeholders, relative to BaseURL.
	SeriesPath  string
	ChapterPath string

	// ChapterFormats are tried in order until one yields page images.
	ChapterFormats []ChapterFormat

	SeriesFields  []mangaingest.FieldSpec
	ChapterFields []mangaingest.FieldSpec

	DefaultType   string
	DefaultStatus string
	DefaultGenres []string

	// StatusLabels maps lowercased scraped status text to the stored label.
	StatusLabels map[string]string

	// ArtistsFromAuthors copies authors into artists when none are listed.
	ArtistsFromAuthors bool
}

// SeriesURL returns the series page URL for slug.
func (s Site) SeriesURL(slug string) string {
	return s.expand(s.SeriesPath, slug, "")
}

// ChapterURL returns the chapter page URL for slug and an already
// formatted chapter number.
func (s Site) ChapterURL(slug, chapter string) string {
	return s.expand(s.ChapterPath, slug, chapter)
}

func (s Site) expand(tmpl, slug, chapter string) string {
	path := strings.NewReplacer("{slug}", slug, "{chapter}", chapter).Replace(tmpl)
	return strings.TrimRight(s.BaseURL, "/") + path
}

func (s Site) status(scraped string) string {
	if scraped == "" {
		return s.DefaultStatus
	}
	if label, ok := s.StatusLabels[strings.ToLower(scraped)]; ok {
		return label
	}
	return scraped
}

// WithBaseURL returns a copy of s served from baseURL. Sites move domains
// often; the table stays the same.
func (s Site) WithBaseURL(baseURL string) Site {
	s.BaseURL = baseURL
	return s
}
