package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLock(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedis(client, Options{Tries: 2, RetryDelay: 5 * time.Millisecond}, nil), mr
}

func TestRedis_AcquireAndRelease(t *testing.T) {
	l, mr := newTestRedisLock(t)

	release, err := l.Acquire(context.Background(), "account:2", "account:1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("ledger:lock:account:1"))
	assert.True(t, mr.Exists("ledger:lock:account:2"))

	release()
	assert.False(t, mr.Exists("ledger:lock:account:1"))
	assert.False(t, mr.Exists("ledger:lock:account:2"))
}

func TestRedis_BusyKeyFailsAndReleasesOthers(t *testing.T) {
	l, mr := newTestRedisLock(t)

	release, err := l.Acquire(context.Background(), "account:2")
	require.NoError(t, err)
	defer release()

	_, err = l.Acquire(context.Background(), "account:1", "account:2")
	require.Error(t, err)
	assert.False(t, mr.Exists("ledger:lock:account:1"))
}
