package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a Redis-backed read-through cache for daily rain observations.
// Repeated runs over the same season reuse cached flags instead of
// re-paying remote weather calls.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache connects to Redis and verifies the connection
func NewCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

func cacheKey(lat, long, date string) string {
	return fmt.Sprintf("rain:%s,%s:%s", lat, long, date)
}

// Get returns the cached rain flag for a date. The second return value
// reports whether the date was present.
func (c *Cache) Get(ctx context.Context, lat, long, date string) (bool, bool, error) {
	val, err := c.client.Get(ctx, cacheKey(lat, long, date)).Result()
	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to read cache: %w", err)
	}
	return val == "1", true, nil
}

// Set stores the rain flag for a date with the configured TTL
func (c *Cache) Set(ctx context.Context, lat, long, date string, rain bool) error {
	val := "0"
	if rain {
		val = "1"
	}
	if err := c.client.Set(ctx, cacheKey(lat, long, date), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Close releases the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}
