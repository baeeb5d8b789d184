package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores resolved permission sets under a version. Invalidate bumps
// the version, so an entry written from a read that raced a mutation lands
// under a version nobody reads again.
type Cache interface {
	Version(ctx context.Context) (int64, error)
	Get(ctx context.Context, version, roleID int64) ([]string, bool, error)
	Set(ctx context.Context, version, roleID int64, perms []string) error
	Invalidate(ctx context.Context) error
}

type cacheKey struct {
	version int64
	roleID  int64
}

// MemoryCache is a process local Cache for single instance deployments.
type MemoryCache struct {
	mu      sync.RWMutex
	version int64
	entries map[cacheKey][]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[cacheKey][]string)}
}

func (c *MemoryCache) Version(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version, nil
}

func (c *MemoryCache) Get(_ context.Context, version, roleID int64) ([]string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	perms, ok := c.entries[cacheKey{version, roleID}]
	if !ok {
		return nil, false, nil
	}
	return append([]string(nil), perms...), true, nil
}

func (c *MemoryCache) Set(_ context.Context, version, roleID int64, perms []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.version {
		return nil
	}
	c.entries[cacheKey{version, roleID}] = append([]string(nil), perms...)
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.entries = make(map[cacheKey][]string)
	return nil
}

const redisVersionKey = "rbac:perms:version"

// RedisCache shares permission sets between instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, redisVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get cache version: %w", err)
	}
	return v, nil
}

func (c *RedisCache) Get(ctx context.Context, version, roleID int64) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, redisKey(version, roleID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached permissions: %w", err)
	}
	var perms []string
	if err := json.Unmarshal(raw, &perms); err != nil {
		return nil, false, fmt.Errorf("decode cached permissions: %w", err)
	}
	return perms, true, nil
}

func (c *RedisCache) Set(ctx context.Context, version, roleID int64, perms []string) error {
	raw, err := json.Marshal(perms)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKey(version, roleID), raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, redisVersionKey).Err()
}

func redisKey(version, roleID int64) string {
	return fmt.Sprintf("rbac:perms:%d:%d", version, roleID)
}
