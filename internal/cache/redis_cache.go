package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error

	// CacheOrExecute fills dest from the cache, or from fn on a miss. The result of
	// fn is written back with the given ttl.
	CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error
}

type redisCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, prefix string, logger *slog.Logger) CacheService {
	return &redisCache{
		client: client,
		prefix: prefix,
		logger: logger.With("component", "redis_cache", "prefix", prefix),
	}
}

func (r *redisCache) key(key string) string {
	return r.prefix + ":" + key
}

func (r *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode cache value %s: %w", key, err)
	}
	return nil
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *redisCache) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	err := r.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		r.logger.WarnContext(ctx, "cache read failed, falling back to source", "key", key, "error", err)
	}

	value, err := fn()
	if err != nil {
		return err
	}

	// round-trip through JSON so dest is filled the same way on a hit and a miss
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode cache value %s: %w", key, err)
	}

	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return nil
}

// SafeDelete removes a key and only logs failures. Cache errors never fail a request.
func SafeDelete(ctx context.Context, c CacheService, key string, logger *slog.Logger) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, key); err != nil {
		logger.WarnContext(ctx, "cache delete failed", "key", key, "error", err)
	}
}
