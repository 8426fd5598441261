package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mangaingest"
)

// Ensure LoggingRegistry implements mangaingest.AdapterRegistry.
var _ mangaingest.AdapterRegistry = (*LoggingRegistry)(nil)

// LoggingRegistry wraps an AdapterRegistry so every resolved adapter logs
// its fetches.
type LoggingRegistry struct {
	next   mangaingest.AdapterRegistry
	logger *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next mangaingest.AdapterRegistry, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, logger: logger}
}

// Resolve delegates to the wrapped registry and wraps the adapter.
func (r *LoggingRegistry) Resolve(p mangaingest.Platform) (mangaingest.SourceAdapter, error) {
	adapter, err := r.next.Resolve(p)
	if err != nil {
		r.logger.Warn("adapter resolve", "platform", p, "err", err)
		return nil, err
	}
	return NewLoggingAdapter(adapter, r.logger), nil
}

// Platforms delegates to the wrapped registry.
func (r *LoggingRegistry) Platforms() []mangaingest.Platform {
	return r.next.Platforms()
}

// Ensure LoggingAdapter implements mangaingest.SourceAdapter.
var _ mangaingest.SourceAdapter = (*LoggingAdapter)(nil)

// LoggingAdapter wraps a SourceAdapter with logging.
type LoggingAdapter struct {
	next   mangaingest.SourceAdapter
	logger *slog.Logger
}

// NewLoggingAdapter creates a new LoggingAdapter.
func NewLoggingAdapter(next mangaingest.SourceAdapter, logger *slog.Logger) *LoggingAdapter {
	return &LoggingAdapter{next: next, logger: logger}
}

// Platform delegates to the wrapped adapter.
func (a *LoggingAdapter) Platform() mangaingest.Platform {
	return a.next.Platform()
}

// FetchSeries delegates to the wrapped adapter and logs the operation.
func (a *LoggingAdapter) FetchSeries(ctx context.Context, id string) (series *mangaingest.Series, err error) {
	defer func(begin time.Time) {
		var title string
		if series != nil {
			title = series.Title
		}
		a.logger.Info("fetch series",
			"platform", a.next.Platform(),
			"id", id,
			"title", title,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.FetchSeries(ctx, id)
}

// FetchChapter delegates to the wrapped adapter and logs the operation.
func (a *LoggingAdapter) FetchChapter(ctx context.Context, slug string, number float64) (chapter *mangaingest.Chapter, err error) {
	defer func(begin time.Time) {
		var pages int
		if chapter != nil {
			pages = len(chapter.Pages)
		}
		a.logger.Info("fetch chapter",
			"platform", a.next.Platform(),
			"slug", slug,
			"chapter", mangaingest.FormatChapterNumber(number),
			"pages", pages,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.FetchChapter(ctx, slug, number)
}
