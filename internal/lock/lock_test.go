package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisLocker(t *testing.T) (*miniredis.Miniredis, *RedisLocker) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisLocker(client)
}

func TestRedisLocker_AcquireRelease(t *testing.T) {
	mr, locker := setupRedisLocker(t)
	ctx := context.Background()

	unlock, err := locker.Acquire(ctx, "contract-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists(keyPrefix+"contract-1"))

	busyCtx, cancel := context.WithTimeout(ctx, 120*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(busyCtx, "contract-1", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	unlock()
	unlock()
	assert.False(t, mr.Exists(keyPrefix+"contract-1"))

	unlock2, err := locker.Acquire(ctx, "contract-1", time.Minute)
	require.NoError(t, err)
	unlock2()
}

func TestRedisLocker_ReleaseKeepsForeignLease(t *testing.T) {
	mr, locker := setupRedisLocker(t)

	unlock, err := locker.Acquire(context.Background(), "contract-2", time.Minute)
	require.NoError(t, err)

	// Lease expired and was taken by someone else.
	require.NoError(t, mr.Set(keyPrefix+"contract-2", "other-owner"))
	unlock()

	got, err := mr.Get(keyPrefix + "contract-2")
	require.NoError(t, err)
	assert.Equal(t, "other-owner", got)
}

func TestLocalLocker_Serializes(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	var mu sync.Mutex
	active, maxActive := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Acquire(ctx, "contract-1", time.Minute)
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
	assert.Empty(t, locker.locks)
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	locker := NewLocalLocker()
	unlock, err := locker.Acquire(context.Background(), "k", 0)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "k", 0)
	assert.ErrorIs(t, err, ErrLocked)

	other, err := locker.Acquire(context.Background(), "other", 0)
	require.NoError(t, err)
	other()
}
