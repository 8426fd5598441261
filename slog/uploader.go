package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mangaingest"
)

// Ensure LoggingUploader implements mangaingest.AssetUploader.
var _ mangaingest.AssetUploader = (*LoggingUploader)(nil)

// LoggingUploader wraps an AssetUploader with logging. Successes log at debug
// level, failures at warn.
type LoggingUploader struct {
	next   mangaingest.AssetUploader
	logger *slog.Logger
}

// NewLoggingUploader creates a new LoggingUploader.
func NewLoggingUploader(next mangaingest.AssetUploader, logger *slog.Logger) *LoggingUploader {
	return &LoggingUploader{next: next, logger: logger}
}

// UploadFromURL delegates to the wrapped uploader and logs the operation.
func (u *LoggingUploader) UploadFromURL(ctx context.Context, url, folder string) (stored string, err error) {
	defer func(begin time.Time) {
		u.log(ctx, err, "upload",
			"source", url,
			"folder", folder,
			"url", stored,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return u.next.UploadFromURL(ctx, url, folder)
}

// UploadFromBuffer delegates to the wrapped uploader and logs the operation.
func (u *LoggingUploader) UploadFromBuffer(ctx context.Context, data []byte, folder string) (stored string, err error) {
	defer func(begin time.Time) {
		u.log(ctx, err, "upload",
			"bytes", len(data),
			"folder", folder,
			"url", stored,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return u.next.UploadFromBuffer(ctx, data, folder)
}

func (u *LoggingUploader) log(ctx context.Context, err error, msg string, args ...any) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
	}
	u.logger.Log(ctx, level, msg, args...)
}
