package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache errors
var (
	ErrCacheNotAvailable = fmt.Errorf("cache not available")
	ErrCacheNotFound     = fmt.Errorf("cache not found")
)

// CacheHelper wraps a redis client for one key namespace. A nil client is
// legal and turns every operation into a no-op, so the service keeps working
// when redis is down or not configured.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{
		client: client,
		prefix: prefix,
	}
}

// CacheConfig defines TTL and key prefix per data type
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Schedule projections change only on decisions, so they tolerate a
	// longer TTL; every exam mutation invalidates them anyway.
	ScheduleCacheConfig = CacheConfig{
		TTL:    10 * time.Minute,
		Prefix: "schedule:",
	}

	// Catalogue data (disciplines, rooms, periods) changes rarely
	CatalogCacheConfig = CacheConfig{
		TTL:    10 * time.Minute,
		Prefix: "catalog:",
	}

	// Proposal queues must stay fresh for reviewers
	ProposalCacheConfig = CacheConfig{
		TTL:    2 * time.Minute,
		Prefix: "proposal:",
	}

	UserCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "user:",
	}
)

// GetCacheKey generates a cache key with prefix
func (c *CacheHelper) GetCacheKey(key string) string {
	return fmt.Sprintf("%s%s", c.prefix, key)
}

// Get retrieves and unmarshals data from cache
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	cacheKey := c.GetCacheKey(key)
	data, err := c.client.Get(ctx, cacheKey).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}

	return nil
}

// Set marshals and stores data in cache
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	cacheKey := c.GetCacheKey(key)
	return c.client.Set(ctx, cacheKey, data, ttl).Err()
}

// Delete removes keys from cache, batching through a pipeline when several
// are given
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.GetCacheKey(key)
	}

	if len(cacheKeys) > 1 {
		pipe := c.client.Pipeline()
		pipe.Del(ctx, cacheKeys...)
		_, err := pipe.Exec(ctx)
		return err
	}

	return c.client.Del(ctx, cacheKeys...).Err()
}

// Exists checks if a key exists in cache
func (c *CacheHelper) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, ErrCacheNotAvailable
	}

	count, err := c.client.Exists(ctx, c.GetCacheKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return count > 0, nil
}

// InvalidatePattern removes all keys matching a pattern. It walks the
// keyspace with SCAN rather than KEYS so redis stays responsive.
func (c *CacheHelper) InvalidatePattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return nil
	}

	fullPattern := c.GetCacheKey(pattern)
	var cursor uint64
	var keys []string

	for {
		var scanKeys []string
		var err error
		scanKeys, cursor, err = c.client.Scan(ctx, cursor, fullPattern, 100).Result()
		if err != nil {
			slog.ErrorContext(ctx, "Cache scan pattern error",
				"error", err,
				"pattern", fullPattern)
			return fmt.Errorf("cache scan pattern error: %w", err)
		}
		keys = append(keys, scanKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	const batchSize = 100
	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		pipe.Del(ctx, keys[i:end]...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		slog.ErrorContext(ctx, "Cache pipeline delete error",
			"error", err,
			"total_keys", len(keys))
		return fmt.Errorf("cache pipeline delete error: %w", err)
	}

	return nil
}

// CacheOrExecute is the cache-aside path: serve from cache when present,
// otherwise run fetchFunc and populate the cache in the background.
func (c *CacheHelper) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetchFunc func() (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}

	if err != ErrCacheNotFound && err != ErrCacheNotAvailable {
		slog.Info("Cache get error, proceeding to fetch", "error", err, "key", key)
	}

	value, err := fetchFunc()
	if err != nil {
		return fmt.Errorf("fetch function error: %w", err)
	}

	go func(parentCtx context.Context) {
		ctxWithTimeout, cancel := context.WithTimeout(parentCtx, 5*time.Second)
		defer cancel()
		if err := c.Set(ctxWithTimeout, key, value, ttl); err != nil {
			slog.Error("Cache set error", "error", err, "key", key)
		}
	}(context.WithoutCancel(ctx))

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}

	return json.Unmarshal(data, dest)
}

// CacheManager groups the helpers by namespace
type CacheManager struct {
	Schedule *CacheHelper
	Catalog  *CacheHelper
	Proposal *CacheHelper
	User     *CacheHelper
}

// NewCacheManager creates the manager. A nil client produces no-op helpers.
func NewCacheManager(client *redis.Client) *CacheManager {
	if client == nil {
		return &CacheManager{
			Schedule: NewCacheHelper(nil, ""),
			Catalog:  NewCacheHelper(nil, ""),
			Proposal: NewCacheHelper(nil, ""),
			User:     NewCacheHelper(nil, ""),
		}
	}

	return &CacheManager{
		Schedule: NewCacheHelper(client, ScheduleCacheConfig.Prefix),
		Catalog:  NewCacheHelper(client, CatalogCacheConfig.Prefix),
		Proposal: NewCacheHelper(client, ProposalCacheConfig.Prefix),
		User:     NewCacheHelper(client, UserCacheConfig.Prefix),
	}
}

// HealthCheck verifies cache connectivity
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.Schedule.client == nil {
		return ErrCacheNotAvailable
	}

	if _, err := cm.Schedule.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}

	return nil
}

// InvalidateExamProjections drops every cached view an exam mutation could
// stale: proposal queues, the approved schedule, and the proposing
// discipline's catalogue entries.
func (cm *CacheManager) InvalidateExamProjections(ctx context.Context, disciplineID uint) error {
	if err := cm.Proposal.InvalidatePattern(ctx, "*"); err != nil {
		slog.Warn("proposal cache invalidation failed", "error", err)
	}
	if err := cm.Schedule.InvalidatePattern(ctx, "*"); err != nil {
		slog.Warn("schedule cache invalidation failed", "error", err)
	}
	pattern := fmt.Sprintf("discipline:%d*", disciplineID)
	if err := cm.Catalog.InvalidatePattern(ctx, pattern); err != nil {
		slog.Warn("catalog cache invalidation failed", "error", err)
	}
	return nil
}

// InvalidateCatalog drops cached catalogue listings after discipline, room
// or period changes.
func (cm *CacheManager) InvalidateCatalog(ctx context.Context) error {
	return cm.Catalog.InvalidatePattern(ctx, "*")
}

// InvalidateUser drops the cached profile for one account.
func (cm *CacheManager) InvalidateUser(ctx context.Context, userID string) error {
	return cm.User.InvalidatePattern(ctx, fmt.Sprintf("id:%s*", userID))
}
