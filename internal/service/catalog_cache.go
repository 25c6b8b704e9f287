package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"hospital-pos/internal/models"
	"hospital-pos/internal/repository"
	"hospital-pos/pkg/redis"
)

// CatalogCache caches catalog lookups in two layers: in-memory for the
// hot path and Redis for cross-restart reuse. The catalog is read-only from
// the workflow's perspective, so entries only need a short TTL to absorb
// admin edits. A nil Redis client disables the second layer.
type CatalogCache struct {
	repo     *repository.CatalogRepository
	redis    *redis.Client
	logger   *zap.Logger
	memCache *memoryCache
	ttl      time.Duration
}

type memoryCache struct {
	mu     sync.RWMutex
	data   map[string]*cacheEntry
	maxAge time.Duration
}

type cacheEntry struct {
	svc      *models.Service
	cachedAt time.Time
}

func NewCatalogCache(repo *repository.CatalogRepository, redisClient *redis.Client, logger *zap.Logger) *CatalogCache {
	return &CatalogCache{
		repo:     repo,
		redis:    redisClient,
		logger:   logger,
		memCache: newMemoryCache(5 * time.Minute),
		ttl:      5 * time.Minute,
	}
}

func newMemoryCache(maxAge time.Duration) *memoryCache {
	return &memoryCache{
		data:   make(map[string]*cacheEntry),
		maxAge: maxAge,
	}
}

// Resolve returns the catalog entry for a service id, or nil when the
// service does not exist. Cache misses fall through to the repository.
func (cc *CatalogCache) Resolve(ctx context.Context, serviceID string) (*models.Service, error) {
	key := cc.cacheKey(serviceID)

	if svc := cc.memCache.get(key); svc != nil {
		return svc, nil
	}

	if cc.redis != nil {
		if data, err := cc.redis.Get(ctx, key); err == nil {
			var svc models.Service
			if err := json.Unmarshal([]byte(data), &svc); err == nil {
				cc.memCache.set(key, &svc)
				return &svc, nil
			}
		}
	}

	svc, err := cc.repo.GetService(ctx, serviceID)
	if err != nil || svc == nil {
		return svc, err
	}

	cc.store(ctx, key, svc)
	return svc, nil
}

// Invalidate drops a service from both cache layers after a catalog edit.
func (cc *CatalogCache) Invalidate(ctx context.Context, serviceID string) {
	key := cc.cacheKey(serviceID)
	cc.memCache.delete(key)

	if cc.redis != nil {
		if err := cc.redis.Delete(ctx, key); err != nil {
			cc.logger.Warn("failed to invalidate cached service",
				zap.String("service_id", serviceID),
				zap.Error(err))
		}
	}
}

func (cc *CatalogCache) store(ctx context.Context, key string, svc *models.Service) {
	cc.memCache.set(key, svc)

	if cc.redis == nil {
		return
	}
	data, err := json.Marshal(svc)
	if err != nil {
		return
	}
	if err := cc.redis.Set(ctx, key, data, cc.ttl); err != nil {
		cc.logger.Warn("failed to cache service in redis",
			zap.String("key", key),
			zap.Error(err))
	}
}

func (cc *CatalogCache) cacheKey(serviceID string) string {
	return fmt.Sprintf("service:%s", serviceID)
}

func (mc *memoryCache) get(key string) *models.Service {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	entry, exists := mc.data[key]
	if !exists {
		return nil
	}
	if time.Since(entry.cachedAt) > mc.maxAge {
		return nil
	}
	return entry.svc
}

func (mc *memoryCache) set(key string, svc *models.Service) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.data[key] = &cacheEntry{svc: svc, cachedAt: time.Now()}
}

func (mc *memoryCache) delete(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	delete(mc.data, key)
}
