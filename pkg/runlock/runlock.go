// Package runlock serializes placement runs per primary document.
//
// Two runs against the same document must not overlap. A [Locker] hands out
// a [Lock] for a document key or fails immediately with a LOCKED error; it
// never waits. Implementations:
//   - LocalLocker: in-process, for the HTTP server and tests
//   - RedisLocker: shared by every process using the same Redis server
//
// # Usage
//
//	err := runlock.WithLock(ctx, locker, "tower", func(ctx context.Context) error {
//	    _, err := runner.PlaceAll(ctx, model, opts)
//	    return err
//	})
//
// Locks expire after their TTL so a crashed holder cannot block a document
// forever. Release only removes a lock still holding the caller's token.
package runlock

import (
	"context"
	"time"

	"github.com/google/uuid"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
)

// KeyPrefix prefixes every lock key.
const KeyPrefix = "roomtag:lock:"

// DefaultTTL bounds how long a lock outlives a holder that never releases it.
const DefaultTTL = 10 * time.Minute

// Lock is a held run lock.
type Lock struct {
	Key       string    `json:"key"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the lock has passed its TTL.
func (l *Lock) Expired() bool {
	return time.Now().After(l.ExpiresAt)
}

// Locker hands out per-document run locks.
type Locker interface {
	// Acquire takes the lock for document, or returns a LOCKED error if
	// another holder has it.
	Acquire(ctx context.Context, document string) (*Lock, error)

	// Release gives the lock up. Releasing an expired or foreign lock is a no-op.
	Release(ctx context.Context, lock *Lock) error
}

// Key returns the lock key for a document.
func Key(document string) string {
	return KeyPrefix + document
}

func newLock(document string, ttl time.Duration) *Lock {
	return &Lock{
		Key:       Key(document),
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(ttl),
	}
}

func errLocked(document string) error {
	return rterrors.New(rterrors.ErrCodeLocked, "another run is in progress for document %q", document)
}

// WithLock runs fn while holding the lock for document.
func WithLock(ctx context.Context, l Locker, document string, fn func(ctx context.Context) error) error {
	lock, err := l.Acquire(ctx, document)
	if err != nil {
		return err
	}
	defer l.Release(context.WithoutCancel(ctx), lock)
	return fn(ctx)
}
