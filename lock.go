package mangaingest

import "context"

// Locker serializes work on a key across concurrent ingestion requests.
type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned function
	// releases the lock and is safe to call more than once.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
