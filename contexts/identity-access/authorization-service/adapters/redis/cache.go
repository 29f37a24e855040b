package redisadapter

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "authz:decision:"

// Cache stores resolver verdicts in Redis under a short TTL. Values are "1"
// for allow and "0" for deny; a missing key is a miss, never a deny.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) GetDecision(ctx context.Context, key string) (bool, bool, error) {
	value, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, false, nil
		}
		return false, false, err
	}
	return value == "1", true, nil
}

func (c *Cache) SetDecision(ctx context.Context, key string, allowed bool, ttl time.Duration) error {
	value := "0"
	if allowed {
		value = "1"
	}
	return c.client.Set(ctx, keyPrefix+key, value, ttl).Err()
}
