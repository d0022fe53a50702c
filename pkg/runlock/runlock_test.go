package runlock

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
)

func TestKey(t *testing.T) {
	if got := Key("tower"); got != "roomtag:lock:tower" {
		t.Errorf("Key(tower) = %q, want roomtag:lock:tower", got)
	}
}

// testLocker exercises the Locker contract.
func testLocker(t *testing.T, l Locker, doc string) {
	t.Helper()
	ctx := context.Background()

	first, err := l.Acquire(ctx, doc)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := l.Acquire(ctx, doc); !rterrors.Is(err, rterrors.ErrCodeLocked) {
		t.Fatalf("second Acquire error = %v, want LOCKED", err)
	}

	other, err := l.Acquire(ctx, doc+"-other")
	if err != nil {
		t.Fatalf("Acquire(other): %v", err)
	}
	defer l.Release(ctx, other)

	foreign := &Lock{Key: first.Key, Token: "not-mine"}
	if err := l.Release(ctx, foreign); err != nil {
		t.Fatalf("Release(foreign): %v", err)
	}
	if _, err := l.Acquire(ctx, doc); !rterrors.Is(err, rterrors.ErrCodeLocked) {
		t.Fatalf("Acquire after foreign release error = %v, want LOCKED", err)
	}

	if err := l.Release(ctx, first); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := l.Acquire(ctx, doc)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	l.Release(ctx, again)
}

func TestLocalLocker(t *testing.T) {
	testLocker(t, NewLocalLocker(0), "tower")
}

func TestLocalLockerExpiry(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker(time.Millisecond)
	if _, err := l.Acquire(ctx, "tower"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := l.Acquire(ctx, "tower"); err != nil {
		t.Errorf("Acquire after expiry: %v", err)
	}
}

func TestWithLock(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker(0)

	sentinel := errors.New("boom")
	err := WithLock(ctx, l, "tower", func(ctx context.Context) error {
		if err := WithLock(ctx, l, "tower", func(context.Context) error { return nil }); !rterrors.Is(err, rterrors.ErrCodeLocked) {
			t.Errorf("nested WithLock error = %v, want LOCKED", err)
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("WithLock error = %v, want fn's error", err)
	}
	if _, err := l.Acquire(ctx, "tower"); err != nil {
		t.Errorf("lock not released: %v", err)
	}
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("ROOMTAG_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ROOMTAG_TEST_REDIS_ADDR not set")
	}
	l, client, err := NewRedisLocker(context.Background(), RedisConfig{Addr: addr, LockTTL: time.Minute})
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	testLocker(t, l, "test-"+uuid.NewString())
}
