package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps session records as plain redis strings under
// "<prefix>:<sha256(scope)>:<name>".
type RedisStorage struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStorage wraps an already connected client.
func NewRedisStorage(rdb *redis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisStorage{rdb: rdb, prefix: prefix}
}

func (r *RedisStorage) key(scope, name string) string {
	return r.prefix + ":" + scopeKey(scope) + ":" + name
}

func (r *RedisStorage) Get(ctx context.Context, scope, name string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.key(scope, name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, scope, name, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.rdb.Set(ctx, r.key(scope, name), value, ttl).Err()
}

func (r *RedisStorage) Delete(ctx context.Context, scope string, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, r.key(scope, n))
	}
	return r.rdb.Del(ctx, keys...).Err()
}

func (r *RedisStorage) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }
