package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const imageCachePrefix = "headcook:image:"

// RedisImageCache stores image URLs in Redis. The TTL should stay below the
// lifetime of upstream image URLs.
type RedisImageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisImageCache(client *redis.Client, ttl time.Duration) *RedisImageCache {
	return &RedisImageCache{client: client, ttl: ttl}
}

func (c *RedisImageCache) Get(ctx context.Context, recipeName string) (string, bool, error) {
	url, err := c.client.Get(ctx, imageCacheKey(recipeName)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

func (c *RedisImageCache) Set(ctx context.Context, recipeName, url string) error {
	return c.client.Set(ctx, imageCacheKey(recipeName), url, c.ttl).Err()
}

func imageCacheKey(recipeName string) string {
	return imageCachePrefix + strings.Join(strings.Fields(strings.ToLower(recipeName)), " ")
}
