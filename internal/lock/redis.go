package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// Options tune the Redis mutexes.
type Options struct {
	Prefix     string
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

func DefaultOptions() Options {
	return Options{
		Prefix:     "ledger:lock",
		Expiry:     10 * time.Second,
		Tries:      32,
		RetryDelay: 50 * time.Millisecond,
	}
}

// Redis holds per-key locks in Redis so that several ledger processes
// serialize on the same account.
type Redis struct {
	rs     *redsync.Redsync
	opts   Options
	logger *slog.Logger
}

func NewRedis(client redis.UniversalClient, opts Options, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultOptions()
	if opts.Prefix == "" {
		opts.Prefix = def.Prefix
	}
	if opts.Expiry <= 0 {
		opts.Expiry = def.Expiry
	}
	if opts.Tries <= 0 {
		opts.Tries = def.Tries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = def.RetryDelay
	}
	return &Redis{rs: redsync.New(goredis.NewPool(client)), opts: opts, logger: logger}
}

// Acquire takes the keys in sorted order. If any key cannot be taken every
// mutex already held is released before returning.
func (l *Redis) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = Normalize(keys)
	held := make([]*redsync.Mutex, 0, len(keys))

	unlockAll := func(ctx context.Context) {
		for i := len(held) - 1; i >= 0; i-- {
			if ok, err := held[i].UnlockContext(ctx); !ok || err != nil {
				l.logger.Warn("lock_release_failed", "key", held[i].Name(), "error", err)
			}
		}
		held = held[:0]
	}

	for _, key := range keys {
		m := l.rs.NewMutex(l.opts.Prefix+":"+key,
			redsync.WithExpiry(l.opts.Expiry),
			redsync.WithTries(l.opts.Tries),
			redsync.WithRetryDelay(l.opts.RetryDelay),
		)
		if err := m.LockContext(ctx); err != nil {
			unlockAll(context.WithoutCancel(ctx))
			if errors.Is(err, redsync.ErrFailed) {
				return nil, fmt.Errorf("lock %s is busy: %w", key, err)
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		held = append(held, m)
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		unlockAll(context.WithoutCancel(ctx))
	}, nil
}
