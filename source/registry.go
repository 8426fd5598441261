package source

import (
	"slices"

	"github.com/fwojciec/mangaingest"
)

// Ensure Registry implements mangaingest.AdapterRegistry at compile time.
var _ mangaingest.AdapterRegistry = (*Registry)(nil)

// Registry maps platforms to adapters. It is built once at startup and is
// read-only afterwards, so it is safe for concurrent use.
type Registry struct {
	adapters map[mangaingest.Platform]mangaingest.SourceAdapter
}

// NewRegistry creates a Registry. A later adapter for the same platform
// replaces an earlier one.
func NewRegistry(adapters ...mangaingest.SourceAdapter) *Registry {
	r := &Registry{adapters: make(map[mangaingest.Platform]mangaingest.SourceAdapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Platform()] = a
	}
	return r
}

// Resolve returns the adapter registered for p.
func (r *Registry) Resolve(p mangaingest.Platform) (mangaingest.SourceAdapter, error) {
	a, ok := r.adapters[p]
	if !ok {
		return nil, mangaingest.Errorf(mangaingest.EUNSUPPORTED, "no adapter registered for platform %q", p)
	}
	return a, nil
}

// Platforms returns the registered platforms in sorted order.
func (r *Registry) Platforms() []mangaingest.Platform {
	out := make([]mangaingest.Platform, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
