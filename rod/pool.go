package rod

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DefaultPoolSize bounds concurrent browser sessions. Each session holds a
// Chrome tab for seconds to tens of seconds.
const DefaultPoolSize = 2

// Pool bounds how many browser sessions run at once.
type Pool struct {
	sem   *semaphore.Weighted
	size  int
	inUse atomic.Int64
}

// NewPool creates a Pool with the given capacity. Sizes below one are
// treated as one.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

// Acquire checks out a slot, blocking while the pool is full. The returned
// release function checks the slot back in and is safe to call more than once.
func (p *Pool) Acquire(ctx context.Context) (release func(), err error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	p.inUse.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.inUse.Add(-1)
			p.sem.Release(1)
		})
	}, nil
}

// InUse returns the number of checked out slots.
func (p *Pool) InUse() int {
	return int(p.inUse.Load())
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return p.size
}
