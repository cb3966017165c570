package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores geocoding answers by normalized place name.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

const cachePrefix = "wildsync:geocode:"

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisClient connects to the Redis server at url. It returns nil when url is empty.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if strings.TrimSpace(url) == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.client.Get(ctx, cachePrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("geocode.cache.get_error", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return v, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, cachePrefix+key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("geocode.cache.set_error", zap.String("key", key), zap.Error(err))
	}
}

func cacheKey(place string) string {
	return strings.Join(strings.Fields(strings.ToLower(place)), " ")
}
