package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
	"github.com/angelmondragon/partsbin-backend/pkg/redis"
)

const (
	lockScope       = "import"
	defaultLockTTL  = 30 * time.Second
	defaultLockWait = 10 * time.Second
	lockPollEvery   = 50 * time.Millisecond
)

// Unlock releases a lock obtained from a Locker.
type Unlock func(ctx context.Context) error

// Locker serialises imports of the same vendor part number so the
// read-reconcile-write of one shipment never interleaves with another.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// RedisLocker implements Locker using Redis SETNX + TTL, so several API
// replicas share one lock space.
type RedisLocker struct {
	store redis.LockStore
	ttl   time.Duration
	wait  time.Duration
}

// NewRedisLocker constructs a Redis-backed locker.
func NewRedisLocker(store redis.LockStore, ttl, wait time.Duration) (*RedisLocker, error) {
	if store == nil {
		return nil, errors.New("redis client required for lock")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &RedisLocker{store: store, ttl: ttl, wait: wait}, nil
}

// Lock polls until the key is owned or the wait budget runs out.
func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	lockKey := l.store.LockKey(lockScope, key)
	owner := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.store.SetNX(ctx, lockKey, owner, l.ttl)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("setnx: %w", err), "acquire import lock")
		}
		if ok {
			return func(ctx context.Context) error {
				return l.release(ctx, lockKey, owner)
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "import already in progress for %s", key)
		}

		timer := time.NewTimer(lockPollEvery)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// release frees the lock only if the owner value still matches.
func (l *RedisLocker) release(ctx context.Context, key, owner string) error {
	if _, err := l.store.ReleaseLock(ctx, key, owner); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// LocalLocker is an in-process keyed mutex for single-instance deployments.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

type localLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: map[string]*localLock{}}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	l.mu.Lock()
	lk, ok := l.locks[key]
	if !ok {
		lk = &localLock{ch: make(chan struct{}, 1)}
		l.locks[key] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.ch <- struct{}{}:
	case <-ctx.Done():
		l.forget(key, lk)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-lk.ch
			l.forget(key, lk)
		})
		return nil
	}, nil
}

func (l *LocalLocker) forget(key string, lk *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, key)
	}
}
