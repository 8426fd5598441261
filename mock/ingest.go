package mock

import (
	"context"

	"github.com/fwojciec/mangaingest"
)

var _ mangaingest.Ingester = (*Ingester)(nil)

// Ingester is a mock implementation of mangaingest.Ingester.
type Ingester struct {
	IngestSeriesFn   func(ctx context.Context, req mangaingest.SeriesRequest) (*mangaingest.Series, error)
	IngestChapterFn  func(ctx context.Context, req mangaingest.ChapterRequest) (*mangaingest.Chapter, error)
	IngestChaptersFn func(ctx context.Context, req mangaingest.ChaptersRequest) ([]mangaingest.ChapterResult, error)
}

func (i *Ingester) IngestSeries(ctx context.Context, req mangaingest.SeriesRequest) (*mangaingest.Series, error) {
	return i.IngestSeriesFn(ctx, req)
}

func (i *Ingester) IngestChapter(ctx context.Context, req mangaingest.ChapterRequest) (*mangaingest.Chapter, error) {
	return i.IngestChapterFn(ctx, req)
}

func (i *Ingester) IngestChapters(ctx context.Context, req mangaingest.ChaptersRequest) ([]mangaingest.ChapterResult, error) {
	return i.IngestChaptersFn(ctx, req)
}
