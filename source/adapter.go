package source

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fwojciec/mangaingest"
)

// Ensure Adapter implements mangaingest.SourceAdapter at compile time.
var _ mangaingest.SourceAdapter = (*Adapter)(nil)

// Adapter scrapes one Site. Pages are fetched over plain HTTP unless the
// site is browser-only or answers with a challenge, in which case they are
// resolved through Evasion.
type Adapter struct {
	Site      Site
	Fetcher   mangaingest.Fetcher
	Evasion   mangaingest.EvasionRunner
	Extractor mangaingest.Extractor
	Detector  mangaingest.ChallengeDetector
}

// Platform returns the platform of the adapter's site.
func (a *Adapter) Platform() mangaingest.Platform {
	return a.Site.Platform
}

// FetchSeries scrapes the series page for slug.
func (a *Adapter) FetchSeries(ctx context.Context, slug string) (*mangaingest.Series, error) {
	pageURL := a.Site.SeriesURL(slug)

	html, err := a.fetchHTML(ctx, pageURL)
	if err != nil {
		if mangaingest.ErrorCode(err) == mangaingest.ENOTFOUND {
			return nil, mangaingest.Errorf(mangaingest.ENOTFOUND, "series %q not found on %s", slug, a.Site.Platform)
		}
		return nil, fmt.Errorf("fetching series %s: %w", pageURL, err)
	}

	fields, err := a.Extractor.Extract(html, pageURL, a.Site.SeriesFields)
	if err != nil {
		return nil, err
	}

	series := &mangaingest.Series{
		Title:       fields.Text(FieldTitle),
		AltTitles:   fields.List(FieldAltTitles),
		Description: fields.Text(FieldDescription),
		CoverURL:    fields.Text(FieldCover),
		Authors:     fields.List(FieldAuthors),
		Artists:     fields.List(FieldArtists),
		Type:        fields.Text(FieldType),
		Status:      a.Site.status(fields.Text(FieldStatus)),
		Genres:      fields.List(FieldGenres),
		Platform:    a.Site.Platform,
		ReleaseDate: fields.Date(FieldReleaseDate),
	}
	if series.Type == "" {
		series.Type = a.Site.DefaultType
	}
	if len(series.Artists) == 0 && a.Site.ArtistsFromAuthors {
		series.Artists = series.Authors
	}
	if len(series.Genres) == 0 {
		series.Genres = a.Site.DefaultGenres
	}
	return series, nil
}

// FetchChapter tries each of the site's chapter URL formats in turn and
// returns the first one that yields page images.
func (a *Adapter) FetchChapter(ctx context.Context, slug string, number float64) (*mangaingest.Chapter, error) {
	var attempted []string
	var lastErr error
	for _, format := range a.Site.ChapterFormats {
		pageURL := a.Site.ChapterURL(slug, format.Apply(number))
		if slices.Contains(attempted, pageURL) {
			continue
		}
		attempted = append(attempted, pageURL)

		chapter, err := a.fetchChapterAt(ctx, pageURL, number)
		if err == nil {
			return chapter, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}

	return nil, mangaingest.Wrapf(lastErr, mangaingest.EEXTRACTION,
		"chapter %s of %q not found on %s (tried %s)",
		mangaingest.FormatChapterNumber(number), slug, a.Site.Platform, strings.Join(attempted, ", "))
}

func (a *Adapter) fetchChapterAt(ctx context.Context, pageURL string, number float64) (*mangaingest.Chapter, error) {
	html, err := a.fetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	fields, err := a.Extractor.Extract(html, pageURL, a.Site.ChapterFields)
	if err != nil {
		return nil, err
	}
	urls := fields.List(FieldPages)
	if len(urls) == 0 {
		return nil, mangaingest.Errorf(mangaingest.EEXTRACTION, "no page images at %s", pageURL)
	}

	title := fields.Text(FieldChapterTitle)
	if title == "" {
		title = mangaingest.DefaultChapterTitle(number)
	}
	return &mangaingest.Chapter{
		Number:      number,
		Title:       title,
		Slug:        mangaingest.Slugify(title),
		ReleaseDate: fields.Date(FieldChapterDate),
		Pages:       mangaingest.NewPages(urls),
	}, nil
}

// fetchHTML escalates to the evasion runner when the site requires a
// browser or the plain fetch runs into a challenge.
func (a *Adapter) fetchHTML(ctx context.Context, pageURL string) (string, error) {
	if a.Site.Browser {
		return a.resolve(ctx, pageURL)
	}

	html, err := a.Fetcher.Fetch(ctx, pageURL)
	if mangaingest.ErrorCode(err) == mangaingest.EBLOCKED {
		return a.resolve(ctx, pageURL)
	}
	if err != nil {
		return "", err
	}
	if a.Detector != nil && a.Detector.IsChallenge(html) {
		return a.resolve(ctx, pageURL)
	}
	return html, nil
}

func (a *Adapter) resolve(ctx context.Context, pageURL string) (string, error) {
	if a.Evasion == nil {
		return "", mangaingest.Errorf(mangaingest.ETIMEOUT, "%s requires a browser session but none is configured", pageURL)
	}
	return a.Evasion.Resolve(ctx, pageURL)
}
