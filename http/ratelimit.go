package http

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/mangaingest"
	"golang.org/x/time/rate"
)

var _ mangaingest.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter keeps one token bucket per site host. "www." is dropped and
// hosts compare case-insensitively, so a site's mirrors share a bucket.
type DomainLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*rate.Limiter
	overrides map[string]rate.Limit
	rps       rate.Limit
	burst     int
}

// NewDomainLimiter allows rps requests per second to each host with the given
// burst. Burst values below one are treated as one.
func NewDomainLimiter(rps float64, burst int) *DomainLimiter {
	return &DomainLimiter{
		buckets:   make(map[string]*rate.Limiter),
		overrides: make(map[string]rate.Limit),
		rps:       rate.Limit(rps),
		burst:     max(burst, 1),
	}
}

// SetRate overrides the rate of one host. An existing bucket is adjusted in
// place.
func (d *DomainLimiter) SetRate(host string, rps float64) {
	host = canonicalHost(host)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.overrides[host] = rate.Limit(rps)
	if b, ok := d.buckets[host]; ok {
		b.SetLimit(rate.Limit(rps))
	}
}

// Wait blocks until a request to host is allowed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	return d.bucket(canonicalHost(host)).Wait(ctx)
}

func (d *DomainLimiter) bucket(host string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b, ok := d.buckets[host]; ok {
		return b
	}
	limit, ok := d.overrides[host]
	if !ok {
		limit = d.rps
	}
	b := rate.NewLimiter(limit, d.burst)
	d.buckets[host] = b
	return b
}

func canonicalHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
