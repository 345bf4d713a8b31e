package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/redis/go-redis/v9"
)

// RedisRunLock implements billing.RunLock on a Redis lease.
// This is suitable for distributed deployments where multiple instances
// must not run the same batch job concurrently.
type RedisRunLock struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisRunLock creates a new Redis-based run lock
func NewRedisRunLock(cfg RedisConfig) (*RedisRunLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRunLock{
		client:    client,
		keyPrefix: "lock:",
	}, nil
}

// NewRedisRunLockWithClient creates a run lock with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisRunLockWithClient(client *redis.Client, keyPrefix string) *RedisRunLock {
	if keyPrefix == "" {
		keyPrefix = "lock:"
	}
	return &RedisRunLock{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// releaseScript deletes the key only while it still holds the caller's
// token. GET+DEL as two round trips would reopen the window the token
// exists to close.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// TryAcquire attempts to take the named lock for at most ttl.
// SETNX with TTL makes acquire-or-refuse a single atomic operation; the TTL
// bounds how long a crashed holder can block the next run. The stored value
// is a per-acquire token so an expired holder cannot release a lease that
// has since passed to another run.
func (l *RedisRunLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, l.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !acquired {
		return "", false, nil
	}
	return token, true, nil
}

// Release gives the lock back if token still owns it. Releasing an expired
// or re-acquired lock is a no-op.
func (l *RedisRunLock) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisRunLock) Close() error {
	return l.client.Close()
}

// Ensure RedisRunLock implements RunLock
var _ billing.RunLock = (*RedisRunLock)(nil)
