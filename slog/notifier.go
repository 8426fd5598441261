package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mangaingest"
)

// Ensure LoggingNotifier implements mangaingest.Notifier.
var _ mangaingest.Notifier = (*LoggingNotifier)(nil)

// LoggingNotifier wraps a Notifier with logging.
type LoggingNotifier struct {
	next   mangaingest.Notifier
	logger *slog.Logger
}

// NewLoggingNotifier creates a new LoggingNotifier.
func NewLoggingNotifier(next mangaingest.Notifier, logger *slog.Logger) *LoggingNotifier {
	return &LoggingNotifier{next: next, logger: logger}
}

// NotifyNewSeries delegates to the wrapped notifier and logs the operation.
func (n *LoggingNotifier) NotifyNewSeries(ctx context.Context, event mangaingest.SeriesEvent) (err error) {
	defer func(begin time.Time) {
		n.logger.Info("notify new series",
			"series", event.SeriesID,
			"slug", event.Slug,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return n.next.NotifyNewSeries(ctx, event)
}

// NotifyNewChapter delegates to the wrapped notifier and logs the operation.
func (n *LoggingNotifier) NotifyNewChapter(ctx context.Context, event mangaingest.ChapterEvent) (err error) {
	defer func(begin time.Time) {
		n.logger.Info("notify new chapter",
			"series", event.SeriesID,
			"chapter", mangaingest.FormatChapterNumber(event.ChapterNumber),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return n.next.NotifyNewChapter(ctx, event)
}
