package mangaingest

import "context"

// SourceAdapter translates one site's pages into canonical records.
type SourceAdapter interface {
	// Platform returns the platform this adapter serves.
	Platform() Platform

	// FetchSeries scrapes the series identified by id (its slug on the site).
	// The returned series has no ID, slug, or uploaded assets yet.
	FetchSeries(ctx context.Context, id string) (*Series, error)

	// FetchChapter scrapes chapter number of the series with slug. Pages hold
	// source image URLs in reading order. Returns EEXTRACTION if no URL
	// variant yields any page image.
	FetchChapter(ctx context.Context, slug string, number float64) (*Chapter, error)
}

// AdapterRegistry resolves the adapter for a platform.
type AdapterRegistry interface {
	// Resolve returns the adapter registered for p.
	// Returns EUNSUPPORTED if none is registered.
	Resolve(p Platform) (SourceAdapter, error)

	// Platforms lists registered platforms in sorted order.
	Platforms() []Platform
}
