// Package lock serializes work on a single contract across requests and
// instances.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrLocked = errors.New("resource is locked")

// Locker acquires an exclusive lease on key. The returned function releases
// it and is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

const keyPrefix = "drsign:lock:"

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds leases as SET NX PX keys so that several server
// instances share them.
type RedisLocker struct {
	client *redis.Client
	retry  time.Duration
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, retry: 50 * time.Millisecond}
}

// Acquire polls until the lease is free or ctx is done.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	key = keyPrefix + key

	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrLocked
			}
			return nil, err
		}
		if ok {
			var once sync.Once
			return func() {
				once.Do(func() {
					releaseScript.Run(context.Background(), l.client, []string{key}, token)
				})
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrLocked
		case <-time.After(l.retry):
		}
	}
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// LocalLocker is the single-process fallback used when Redis is not
// configured.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*entry)}
}

// Acquire ignores ttl; the lease lasts until released.
func (l *LocalLocker) Acquire(ctx context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, e)
		return nil, ErrLocked
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.drop(key, e)
		})
	}, nil
}

func (l *LocalLocker) drop(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
