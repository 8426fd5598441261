package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/mangaingest"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Ensure Locker implements mangaingest.Locker at compile time.
var _ mangaingest.Locker = (*Locker)(nil)

const (
	// DefaultLockTTL bounds how long a crashed holder can block a key.
	DefaultLockTTL = 5 * time.Minute

	// DefaultRetryInterval is the wait between acquisition attempts.
	DefaultRetryInterval = 50 * time.Millisecond

	lockPrefix = "lock:"
)

// unlockScript deletes the key only while it still holds our token.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker is a mangaingest.Locker shared by every process using the same
// Redis. Locks expire after their TTL.
type Locker struct {
	client   redis.Cmdable
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithTTL sets the lock expiry.
func WithTTL(ttl time.Duration) LockerOption {
	return func(l *Locker) {
		l.ttl = ttl
	}
}

// WithRetryInterval sets the wait between acquisition attempts.
func WithRetryInterval(d time.Duration) LockerOption {
	return func(l *Locker) {
		l.interval = d
	}
}

// WithLogger sets the logger that reports failed unlocks.
func WithLogger(logger *slog.Logger) LockerOption {
	return func(l *Locker) {
		l.logger = logger
	}
}

// NewLocker creates a Locker.
func NewLocker(client redis.Cmdable, opts ...LockerOption) *Locker {
	l := &Locker{client: client, ttl: DefaultLockTTL, interval: DefaultRetryInterval, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock polls SET NX until key is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := lockPrefix + key
	token := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("acquiring %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.interval):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Unlock runs even after the caller's context is done.
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := l.client.Eval(ctx, unlockScript, []string{redisKey}, token).Err(); err != nil {
				l.logger.Error("releasing lock failed", "key", key, "ttl", l.ttl, "err", err)
			}
		})
	}, nil
}
