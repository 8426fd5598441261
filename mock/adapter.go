package mock

import (
	"context"

	"github.com/fwojciec/mangaingest"
)

var _ mangaingest.SourceAdapter = (*SourceAdapter)(nil)

// SourceAdapter is a mock implementation of mangaingest.SourceAdapter.
type SourceAdapter struct {
	PlatformFn     func() mangaingest.Platform
	FetchSeriesFn  func(ctx context.Context, id string) (*mangaingest.Series, error)
	FetchChapterFn func(ctx context.Context, slug string, number float64) (*mangaingest.Chapter, error)
}

func (a *SourceAdapter) Platform() mangaingest.Platform {
	return a.PlatformFn()
}

func (a *SourceAdapter) FetchSeries(ctx context.Context, id string) (*mangaingest.Series, error) {
	return a.FetchSeriesFn(ctx, id)
}

func (a *SourceAdapter) FetchChapter(ctx context.Context, slug string, number float64) (*mangaingest.Chapter, error) {
	return a.FetchChapterFn(ctx, slug, number)
}

var _ mangaingest.AdapterRegistry = (*AdapterRegistry)(nil)

// AdapterRegistry is a mock implementation of mangaingest.AdapterRegistry.
type AdapterRegistry struct {
	ResolveFn   func(p mangaingest.Platform) (mangaingest.SourceAdapter, error)
	PlatformsFn func() []mangaingest.Platform
}

func (r *AdapterRegistry) Resolve(p mangaingest.Platform) (mangaingest.SourceAdapter, error) {
	return r.ResolveFn(p)
}

func (r *AdapterRegistry) Platforms() []mangaingest.Platform {
	return r.PlatformsFn()
}
