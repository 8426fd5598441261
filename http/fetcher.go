// Package http fetches static pages over plain HTTP for sites that do not
// need JavaScript rendering.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/fwojciec/mangaingest"
	"golang.org/x/net/publicsuffix"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent matches the browser sessions so both paths look alike.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBodyBytes caps how much of a page is read.
const maxBodyBytes = 16 << 20

// Ensure Fetcher implements mangaingest.Fetcher at compile time.
var _ mangaingest.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML over HTTP through a transport that mimics a real
// browser's TLS and header fingerprint.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	limiter   mangaingest.DomainLimiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithLimiter rate limits requests per host.
func WithLimiter(l mangaingest.DomainLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	// Sites set session cookies on the first page; later requests must
	// carry them or they are challenged again.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	transport := http.DefaultTransport.(*http.Transport).Clone()
	f.client = &http.Client{
		Timeout:   f.timeout,
		Transport: cloudflarebp.AddCloudFlareByPass(transport),
		Jar:       jar,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL. A 404 yields
// ENOTFOUND and the statuses anti-bot layers answer with yield EBLOCKED.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", mangaingest.Errorf(mangaingest.EINVALID, "invalid URL %q: %v", rawURL, err)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, u.Hostname()); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ar;q=0.8")
	req.Header.Set("Referer", u.Scheme+"://"+u.Host+"/")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", mangaingest.Errorf(mangaingest.ENOTFOUND, "page not found: %s", rawURL)
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return "", mangaingest.Errorf(mangaingest.EBLOCKED, "HTTP %d for %s", resp.StatusCode, rawURL)
	default:
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
