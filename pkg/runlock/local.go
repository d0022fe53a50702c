package runlock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker is an in-process Locker.
type LocalLocker struct {
	mu    sync.Mutex
	ttl   time.Duration
	locks map[string]*Lock
}

// NewLocalLocker creates an in-process locker. A non-positive ttl uses [DefaultTTL].
func NewLocalLocker(ttl time.Duration) *LocalLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LocalLocker{ttl: ttl, locks: make(map[string]*Lock)}
}

func (l *LocalLocker) Acquire(ctx context.Context, document string) (*Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := Key(document)
	if held, ok := l.locks[key]; ok && !held.Expired() {
		return nil, errLocked(document)
	}
	lock := newLock(document, l.ttl)
	l.locks[key] = lock
	return lock, nil
}

func (l *LocalLocker) Release(ctx context.Context, lock *Lock) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.locks[lock.Key]; ok && held.Token == lock.Token {
		delete(l.locks, lock.Key)
	}
	return nil
}
