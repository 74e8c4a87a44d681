package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores keys in Redis.  Expiry is delegated to the server.
type RedisKV struct{ Client *redis.Client }

func NewRedisKV(c *redis.Client) *RedisKV { return &RedisKV{Client: c} }

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := r.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", unavailable("redis get", err)
	}
	return v, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.Client.Set(ctx, key, value, ttl).Err(); err != nil {
		return unavailable("redis set", err)
	}
	return nil
}

func (r *RedisKV) SetNX(ctx context.Context, key, value string) (bool, error) {
	ok, err := r.Client.SetNX(ctx, key, value, 0).Result()
	if err != nil {
		return false, unavailable("redis setnx", err)
	}
	return ok, nil
}

func (r *RedisKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.Client.Del(ctx, keys...).Err(); err != nil {
		return unavailable("redis del", err)
	}
	return nil
}
