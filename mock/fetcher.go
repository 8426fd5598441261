package mock

import (
	"context"

	"github.com/fwojciec/mangaingest"
)

var _ mangaingest.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of mangaingest.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ mangaingest.EvasionRunner = (*EvasionRunner)(nil)

// EvasionRunner is a mock implementation of mangaingest.EvasionRunner.
type EvasionRunner struct {
	ResolveFn func(ctx context.Context, url string) (string, error)
}

func (r *EvasionRunner) Resolve(ctx context.Context, url string) (string, error) {
	return r.ResolveFn(ctx, url)
}

var _ mangaingest.ChallengeDetector = (*ChallengeDetector)(nil)

// ChallengeDetector is a mock implementation of mangaingest.ChallengeDetector.
type ChallengeDetector struct {
	IsChallengeFn func(html string) bool
}

func (d *ChallengeDetector) IsChallenge(html string) bool {
	return d.IsChallengeFn(html)
}
