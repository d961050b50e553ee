package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fxconvert/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisRateCache stores the rate table as a single JSON blob in Redis.
type RedisRateCache struct {
	client *redis.Client
	key    string
}

func (c *RedisRateCache) Get(ctx context.Context) (domain.RateTable, bool, error) {
	val, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %q from redis: %w", c.key, err)
	}

	var rates domain.RateTable
	if err = json.Unmarshal(val, &rates); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached rates under %q: %w", c.key, err)
	}
	return rates, true, nil
}

// Set overwrites the entry with no expiration.
func (c *RedisRateCache) Set(ctx context.Context, rates domain.RateTable) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("failed to encode rates: %w", err)
	}
	if err = c.client.Set(ctx, c.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %q in redis: %w", c.key, err)
	}
	return nil
}

func NewRedisRateCache(client *redis.Client, key string) *RedisRateCache {
	return &RedisRateCache{client: client, key: key}
}
