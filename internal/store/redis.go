package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisKeyNamespace = "deskboard:"

// RedisBackend stores keys under the "deskboard:" namespace of a Redis database.
type RedisBackend struct {
	client *redis.Client
}

// OpenRedisBackend connects using a redis:// URL (see redis.ParseURL).
func OpenRedisBackend(rawURL string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, err
	}
	return NewRedisBackend(redis.NewClient(opts)), nil
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := b.client.Get(ctx, redisKeyNamespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (b *RedisBackend) Put(ctx context.Context, key string, value []byte) error {
	return b.client.Set(ctx, redisKeyNamespace+key, value, 0).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.client.Del(ctx, redisKeyNamespace+key).Err()
}

func (b *RedisBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	out := []string{}
	iter := b.client.Scan(ctx, 0, redisKeyNamespace+"*", 0).Iterator()
	for iter.Next(ctx) {
		k := strings.TrimPrefix(iter.Val(), redisKeyNamespace)
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
