// Package ingest orchestrates series and chapter ingestion: dedup, scrape,
// asset upload, persistence and the post-commit hooks.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mangaingest"
	"golang.org/x/sync/errgroup"
)

// DefaultPageConcurrency bounds concurrent page uploads per chapter.
const DefaultPageConcurrency = 4

// Ensure Pipeline implements mangaingest.Ingester at compile time.
var _ mangaingest.Ingester = (*Pipeline)(nil)

// Pipeline runs the ingestion workflow. Series, Chapters, Adapters and
// Assets are required. Thumbnails, Similarity, Notifier and Locker are
// optional; a nil hook is skipped.
type Pipeline struct {
	Series     mangaingest.SeriesService
	Chapters   mangaingest.ChapterService
	Adapters   mangaingest.AdapterRegistry
	Assets     mangaingest.AssetUploader
	Thumbnails mangaingest.Thumbnailer
	Similarity mangaingest.SimilarityRefresher
	Notifier   mangaingest.Notifier
	Locker     mangaingest.Locker
	Logger     *slog.Logger

	// RetryDelays are the waits between upload attempts. Nil uses
	// DefaultRetryDelays.
	RetryDelays []time.Duration

	PageConcurrency int
}

// IngestSeries scrapes the series named by req and stores it once.
func (p *Pipeline) IngestSeries(ctx context.Context, req mangaingest.SeriesRequest) (*mangaingest.Series, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Platform == "" {
		req.Platform = mangaingest.DefaultPlatform
	}

	slug := mangaingest.Slugify(req.Title)
	if slug == "" {
		return nil, mangaingest.Errorf(mangaingest.EINVALID, "title %q has no usable characters", req.Title)
	}

	unlock, err := p.lock(ctx, "series:"+slug)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := p.seriesAbsent(ctx, slug); err != nil {
		return nil, err
	}

	adapter, err := p.Adapters.Resolve(req.Platform)
	if err != nil {
		return nil, err
	}
	series, err := adapter.FetchSeries(ctx, slug)
	if err != nil {
		return nil, err
	}
	series.Slug = slug
	series.Platform = req.Platform

	if err := p.uploadCover(ctx, series); err != nil {
		return nil, err
	}

	if err := p.Series.CreateSeries(ctx, series); err != nil {
		return nil, err
	}

	p.afterSeries(context.WithoutCancel(ctx), series)
	return series, nil
}

func (p *Pipeline) seriesAbsent(ctx context.Context, slug string) error {
	existing, err := p.Series.FindSeriesBySlug(ctx, slug)
	switch {
	case mangaingest.ErrorCode(err) == mangaingest.ENOTFOUND:
		return nil
	case err != nil:
		return err
	case existing != nil:
		return mangaingest.Errorf(mangaingest.ECONFLICT, "series %q already exists", slug)
	}
	return nil
}

// uploadCover replaces the scraped cover with the uploaded one and sets the
// thumbnail.
func (p *Pipeline) uploadCover(ctx context.Context, series *mangaingest.Series) error {
	source := series.CoverURL
	cover, err := UploadWithRetry(ctx, source, func(ctx context.Context) (string, error) {
		return p.Assets.UploadFromURL(ctx, source, mangaingest.FolderCovers)
	}, p.logger(), p.retryDelays())
	if err != nil {
		return mangaingest.Wrapf(err, mangaingest.EUPLOAD, "uploading cover for %q", series.Slug)
	}
	series.CoverURL = cover

	if p.Thumbnails == nil {
		return nil
	}
	thumb, err := p.Thumbnails.Thumbnail(ctx, source)
	if err != nil {
		return mangaingest.Wrapf(err, mangaingest.EUPLOAD, "creating thumbnail for %q", series.Slug)
	}
	url, err := UploadWithRetry(ctx, "thumbnail of "+source, func(ctx context.Context) (string, error) {
		return p.Assets.UploadFromBuffer(ctx, thumb, mangaingest.FolderThumbnails)
	}, p.logger(), p.retryDelays())
	if err != nil {
		return mangaingest.Wrapf(err, mangaingest.EUPLOAD, "uploading thumbnail for %q", series.Slug)
	}
	series.ThumbnailURL = url
	return nil
}

func (p *Pipeline) afterSeries(ctx context.Context, series *mangaingest.Series) {
	if p.Similarity != nil {
		if err := p.Similarity.Refresh(ctx, series.ID); err != nil {
			p.logger().Error("similarity refresh failed", "series", series.ID, "err", err)
		}
	}
	if p.Notifier != nil {
		err := p.Notifier.NotifyNewSeries(ctx, mangaingest.SeriesEvent{
			SeriesID: series.ID,
			Title:    series.Title,
			Slug:     series.Slug,
			CoverURL: series.CoverURL,
		})
		if err != nil {
			p.logger().Error("series notification failed", "series", series.ID, "err", err)
		}
	}
}

// IngestChapter scrapes one chapter of a stored series through the adapter
// of the series' own platform.
func (p *Pipeline) IngestChapter(ctx context.Context, req mangaingest.ChapterRequest) (*mangaingest.Chapter, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return p.ingestChapter(ctx, req.SeriesID, req.Number)
}

// IngestChapters ingests each number in turn. A failed number is reported in
// its result and does not stop the others.
func (p *Pipeline) IngestChapters(ctx context.Context, req mangaingest.ChaptersRequest) ([]mangaingest.ChapterResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	results := make([]mangaingest.ChapterResult, len(req.ChapterNumbers))
	for i, n := range req.ChapterNumbers {
		chapter, err := p.ingestChapter(ctx, req.SeriesID, n)
		results[i] = mangaingest.ChapterResult{Number: n, Chapter: chapter, Err: err}
		if err != nil {
			p.logger().Warn("chapter ingestion failed", "series", req.SeriesID, "chapter", n, "err", err)
		}
	}
	return results, nil
}

func (p *Pipeline) ingestChapter(ctx context.Context, seriesID string, number float64) (*mangaingest.Chapter, error) {
	series, err := p.Series.FindSeriesByID(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	unlock, err := p.lock(ctx, "chapter:"+series.ID+":"+mangaingest.FormatChapterNumber(number))
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := p.Chapters.FindChapter(ctx, series.ID, number)
	switch {
	case mangaingest.ErrorCode(err) == mangaingest.ENOTFOUND:
	case err != nil:
		return nil, err
	case existing != nil:
		return nil, mangaingest.Errorf(mangaingest.ECONFLICT, "chapter %s of %q already exists",
			mangaingest.FormatChapterNumber(number), series.Slug)
	}

	adapter, err := p.Adapters.Resolve(series.Platform)
	if err != nil {
		return nil, err
	}
	chapter, err := adapter.FetchChapter(ctx, series.Slug, number)
	if err != nil {
		return nil, err
	}
	chapter.SeriesID = series.ID
	chapter.Number = number

	if err := p.uploadPages(ctx, chapter); err != nil {
		return nil, err
	}

	if err := p.Chapters.CreateChapter(ctx, chapter); err != nil {
		return nil, err
	}

	p.afterChapter(context.WithoutCancel(ctx), series, chapter)
	return chapter, nil
}

// uploadPages uploads every page with bounded concurrency and rewrites the
// page URLs in place. Page order is preserved; any failure aborts.
func (p *Pipeline) uploadPages(ctx context.Context, chapter *mangaingest.Chapter) error {
	if len(chapter.Pages) == 0 {
		return mangaingest.Errorf(mangaingest.EEXTRACTION, "chapter %s has no pages",
			mangaingest.FormatChapterNumber(chapter.Number))
	}

	concurrency := p.PageConcurrency
	if concurrency <= 0 {
		concurrency = DefaultPageConcurrency
	}

	uploaded := make([]string, len(chapter.Pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, page := range chapter.Pages {
		g.Go(func() error {
			url, err := UploadWithRetry(gctx, page.ImageURL, func(ctx context.Context) (string, error) {
				return p.Assets.UploadFromURL(ctx, page.ImageURL, mangaingest.FolderPages)
			}, p.logger(), p.retryDelays())
			if err != nil {
				return mangaingest.Wrapf(err, mangaingest.EUPLOAD, "uploading page %d", page.Number)
			}
			uploaded[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range chapter.Pages {
		chapter.Pages[i].ImageURL = uploaded[i]
	}
	return nil
}

func (p *Pipeline) afterChapter(ctx context.Context, series *mangaingest.Series, chapter *mangaingest.Chapter) {
	if p.Notifier == nil {
		return
	}
	err := p.Notifier.NotifyNewChapter(ctx, mangaingest.ChapterEvent{
		SeriesID:      series.ID,
		SeriesTitle:   series.Title,
		ChapterID:     chapter.ID,
		ChapterNumber: chapter.Number,
		ChapterTitle:  chapter.Title,
	})
	if err != nil {
		p.logger().Error("chapter notification failed", "series", series.ID, "chapter", chapter.Number, "err", err)
	}
}

func (p *Pipeline) lock(ctx context.Context, key string) (func(), error) {
	if p.Locker == nil {
		return func() {}, nil
	}
	unlock, err := p.Locker.Lock(ctx, key)
	if err != nil {
		return nil, mangaingest.Wrapf(err, mangaingest.ETIMEOUT, "acquiring lock %s", key)
	}
	return unlock, nil
}

func (p *Pipeline) retryDelays() []time.Duration {
	if p.RetryDelays != nil {
		return p.RetryDelays
	}
	return DefaultRetryDelays()
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
