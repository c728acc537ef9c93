package tokenstore

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each key as "<namespace>:<key>".
type RedisBackend struct {
	client    *redis.Client
	namespace string
}

// NewRedisBackend returns a backend over client scoped to namespace.
func NewRedisBackend(client *redis.Client, namespace string) *RedisBackend {
	return &RedisBackend{client: client, namespace: namespace}
}

func (b *RedisBackend) key(k string) string {
	return b.namespace + ":" + k
}

// Get returns the value for key.
func (b *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	v, err := b.client.Get(ctx, b.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

// Set stores value under key without expiry.
func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	return b.client.Set(ctx, b.key(key), value, 0).Err()
}

// Delete removes keys in one round trip.
func (b *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = b.key(k)
	}
	return b.client.Del(ctx, full...).Err()
}

// Keys scans the namespace and returns keys without the prefix.
func (b *RedisBackend) Keys(ctx context.Context) ([]string, error) {
	prefix := b.key("")
	var out []string
	iter := b.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
