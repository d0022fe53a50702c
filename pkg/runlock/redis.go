package runlock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	rterrors "github.com/rajithraghunath/roomtag/pkg/errors"
)

// releaseScript deletes the key only if it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string        `toml:"addr"`
	Password string        `toml:"password"`
	DB       int           `toml:"db"`
	LockTTL  time.Duration `toml:"lock_ttl"`
}

// RedisLocker is a Locker shared across processes through Redis.
type RedisLocker struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisLocker connects to Redis and verifies the connection.
func NewRedisLocker(ctx context.Context, cfg RedisConfig) (*RedisLocker, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, rterrors.Wrap(rterrors.ErrCodeStore, err, "connect to redis at %s", cfg.Addr)
	}
	return NewRedisLockerFromClient(client, cfg.LockTTL), client, nil
}

// NewRedisLockerFromClient wraps an existing client. A non-positive ttl uses
// [DefaultTTL].
func NewRedisLockerFromClient(client redis.Cmdable, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, document string) (*Lock, error) {
	lock := newLock(document, l.ttl)
	ok, err := l.client.SetNX(ctx, lock.Key, lock.Token, l.ttl).Result()
	if err != nil {
		return nil, rterrors.Wrap(rterrors.ErrCodeStore, err, "acquire %s", lock.Key)
	}
	if !ok {
		return nil, errLocked(document)
	}
	return lock, nil
}

func (l *RedisLocker) Release(ctx context.Context, lock *Lock) error {
	if err := releaseScript.Run(ctx, l.client, []string{lock.Key}, lock.Token).Err(); err != nil && err != redis.Nil {
		return rterrors.Wrap(rterrors.ErrCodeStore, err, "release %s", lock.Key)
	}
	return nil
}
