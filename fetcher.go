package mangaingest

import "context"

// Fetcher retrieves raw HTML from URLs without running JavaScript.
type Fetcher interface {
	// Fetch returns the body of the page at url.
	// Returns ENOTFOUND when the site answers 404.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DomainLimiter rate limits requests per domain.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed or ctx is done.
	Wait(ctx context.Context, domain string) error
}
