package mock

import (
	"context"

	"github.com/fwojciec/mangaingest"
)

var _ mangaingest.SeriesService = (*SeriesService)(nil)

// SeriesService is a mock implementation of mangaingest.SeriesService.
type SeriesService struct {
	CreateSeriesFn     func(ctx context.Context, series *mangaingest.Series) error
	FindSeriesByIDFn   func(ctx context.Context, id string) (*mangaingest.Series, error)
	FindSeriesBySlugFn func(ctx context.Context, slug string) (*mangaingest.Series, error)
	FindFeaturesFn     func(ctx context.Context) ([]*mangaingest.Features, error)
}

func (s *SeriesService) CreateSeries(ctx context.Context, series *mangaingest.Series) error {
	return s.CreateSeriesFn(ctx, series)
}

func (s *SeriesService) FindSeriesByID(ctx context.Context, id string) (*mangaingest.Series, error) {
	return s.FindSeriesByIDFn(ctx, id)
}

func (s *SeriesService) FindSeriesBySlug(ctx context.Context, slug string) (*mangaingest.Series, error) {
	return s.FindSeriesBySlugFn(ctx, slug)
}

func (s *SeriesService) FindFeatures(ctx context.Context) ([]*mangaingest.Features, error) {
	return s.FindFeaturesFn(ctx)
}

var _ mangaingest.ChapterService = (*ChapterService)(nil)

// ChapterService is a mock implementation of mangaingest.ChapterService.
type ChapterService struct {
	CreateChapterFn func(ctx context.Context, chapter *mangaingest.Chapter) error
	FindChapterFn   func(ctx context.Context, seriesID string, number float64) (*mangaingest.Chapter, error)
}

func (s *ChapterService) CreateChapter(ctx context.Context, chapter *mangaingest.Chapter) error {
	return s.CreateChapterFn(ctx, chapter)
}

func (s *ChapterService) FindChapter(ctx context.Context, seriesID string, number float64) (*mangaingest.Chapter, error) {
	return s.FindChapterFn(ctx, seriesID, number)
}
