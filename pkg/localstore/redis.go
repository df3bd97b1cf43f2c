package localstore

import (
	"context"
	"time"
)

type redisKV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	StorageKey(parts ...string) string
}

// Redis stores values in Redis under the client's local-storage namespace.
type Redis struct {
	client redisKV
}

// NewRedis wraps a pkg/redis client.
func NewRedis(client redisKV) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return r.client.Get(ctx, r.client.StorageKey(key))
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.client.StorageKey(key), value, 0)
}

func (r *Redis) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	return r.client.SetNX(ctx, r.client.StorageKey(key), value, 0)
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.StorageKey(key))
}
