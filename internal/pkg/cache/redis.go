// Package cache provides the small key/value store used for idempotency
// bookkeeping. The production implementation is Redis; tests use the
// in-memory one.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the port the stock ledger depends on. Get returns "" (no error)
// on a miss so callers can treat absence as a plain cache miss.
type Store interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Key(operation, id string) string
}

type redisStore struct {
	client      *redis.Client
	serviceName string
}

// NewRedisStore connects a Store to the Redis instance at addr.
func NewRedisStore(addr, serviceName string) Store {
	return &redisStore{
		client:      redis.NewClient(&redis.Options{Addr: addr}),
		serviceName: serviceName,
	}
}

func (r *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (r *redisStore) Key(operation, id string) string {
	return fmt.Sprintf("%s:%s:%s", r.serviceName, operation, id)
}
