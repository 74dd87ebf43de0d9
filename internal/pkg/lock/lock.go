// Package lock provides keyed mutual exclusion for balance and jackpot
// mutations, and the admission registry that keeps a user to one game
// at a time.
package lock

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// entry is a one-slot semaphore with a reference count so idle keys
// can be dropped from the map.
type entry struct {
	sem  chan struct{}
	refs int
}

// KeyLock serializes work per int64 key (a user ID or a server ID).
// Keys are created on first use and removed once nobody holds or waits
// for them.
type KeyLock struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// New creates an empty KeyLock.
func New() *KeyLock {
	return &KeyLock{entries: make(map[int64]*entry)}
}

func (l *KeyLock) acquireRef(key int64) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *KeyLock) releaseRef(key int64, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Lock blocks until the key is held or ctx is done, in which case the
// returned error wraps both ErrLockTimeout and ctx.Err().
func (l *KeyLock) Lock(ctx context.Context, key int64) error {
	e := l.acquireRef(key)
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.releaseRef(key, e)
		return fmt.Errorf("%w: key %d: %w", ErrLockTimeout, key, ctx.Err())
	}
}

// Unlock releases a key previously acquired with Lock or LockAll.
// Unlocking a key that is not held is a no-op.
func (l *KeyLock) Unlock(key int64) {
	l.mu.Lock()
	e, ok := l.entries[key]
	l.mu.Unlock()
	if !ok {
		return
	}
	select {
	case <-e.sem:
		l.releaseRef(key, e)
	default:
	}
}

// LockAll acquires every distinct key in ascending order, which is the
// global order all multi-key callers must follow to stay deadlock free.
// On failure the keys acquired so far are released.
func (l *KeyLock) LockAll(ctx context.Context, keys ...int64) (func(), error) {
	ordered := slices.Clone(keys)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	held := make([]int64, 0, len(ordered))
	unlock := func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.Unlock(held[i])
		}
	}
	for _, key := range ordered {
		if err := l.Lock(ctx, key); err != nil {
			unlock()
			return func() {}, err
		}
		held = append(held, key)
	}
	return unlock, nil
}

// Len returns the number of keys currently tracked.
func (l *KeyLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
