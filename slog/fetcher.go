// Package slog decorates mangaingest services with structured logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mangaingest"
)

// Ensure LoggingFetcher implements mangaingest.Fetcher.
var _ mangaingest.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   mangaingest.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next mangaingest.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// Ensure LoggingEvasionRunner implements mangaingest.EvasionRunner.
var _ mangaingest.EvasionRunner = (*LoggingEvasionRunner)(nil)

// LoggingEvasionRunner wraps an EvasionRunner with logging.
type LoggingEvasionRunner struct {
	next   mangaingest.EvasionRunner
	logger *slog.Logger
}

// NewLoggingEvasionRunner creates a new LoggingEvasionRunner.
func NewLoggingEvasionRunner(next mangaingest.EvasionRunner, logger *slog.Logger) *LoggingEvasionRunner {
	return &LoggingEvasionRunner{next: next, logger: logger}
}

// Resolve delegates to the wrapped runner and logs the operation.
func (r *LoggingEvasionRunner) Resolve(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		r.logger.Info("browser resolve",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Resolve(ctx, url)
}
