// Package cache provides an optional Redis read cache for catalog data, so
// a busy storefront does not hammer the backend for the same product lists
// on every page view.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "catalog:"

// ErrMiss is returned when the key is absent or expired.
var ErrMiss = fmt.Errorf("cache miss")

// Catalog is a JSON blob cache keyed by catalog query.
type Catalog struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalog creates a catalog cache with the given TTL.
func NewCatalog(client *redis.Client, ttl time.Duration) *Catalog {
	return &Catalog{client: client, ttl: ttl}
}

// Get loads the cached value for key into out. Returns ErrMiss when absent.
func (c *Catalog) Get(ctx context.Context, key string, out any) error {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal cached %s: %w", key, err)
	}
	return nil
}

// Set stores value under key with the configured TTL.
func (c *Catalog) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Invalidate removes the given keys.
func (c *Catalog) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = keyPrefix + k
	}

	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (c *Catalog) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
