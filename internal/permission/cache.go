package permission

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/certa-platform/certa-permissions/internal/catalog"
)

// Cache stores serialized effective permission sets keyed per
// (tenant, module, user) triple. It is strictly an optimization: the service
// works identically without one, and every grant mutation invalidates the
// touched triple.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func cacheKey(tenantID, userID fmt.Stringer, module catalog.ModuleType) string {
	return fmt.Sprintf("perm:%s:%s:%s", tenantID, module, userID)
}

// RedisCache backs the permission cache with Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache constructs a Redis backed cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get fetches a cached value; a missing key is not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// Set stores a value with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete drops a key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// LocalCache is an in-process alternative for single-instance deployments.
type LocalCache struct {
	c *gocache.Cache
}

// NewLocalCache constructs an in-process cache.
func NewLocalCache(defaultTTL time.Duration) *LocalCache {
	return &LocalCache{c: gocache.New(defaultTTL, time.Minute)}
}

// Get fetches a cached value.
func (c *LocalCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	return b, true, nil
}

// Set stores a value with the given TTL.
func (c *LocalCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.c.Set(key, value, ttl)
	return nil
}

// Delete drops a key.
func (c *LocalCache) Delete(_ context.Context, key string) error {
	c.c.Delete(key)
	return nil
}
