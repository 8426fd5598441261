package ingest

import (
	"context"
	"log/slog"
	"time"
)

// DefaultRetryDelays returns the waits between upload attempts: 1s, 2s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second}
}

// UploadFunc uploads one asset and returns its canonical URL.
type UploadFunc func(ctx context.Context) (string, error)

// UploadWithRetry calls upload until it succeeds, making len(delays)+1
// attempts in total and sleeping delays[i] after failed attempt i.
func UploadWithRetry(ctx context.Context, what string, upload UploadFunc, logger *slog.Logger, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		url, err := upload(ctx)
		if err == nil {
			return url, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if logger != nil {
			logger.Warn("upload retry", "asset", what, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}
