package service

import (
	"context"
	"encoding/json"
	"time"

	"castlist-be/internal/domain"
	"castlist-be/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheService is the explicit, injectable cache layer over the stateless
// engine: cache-aside reads with TTL and explicit per-community invalidation.
// Nothing below this layer caches anything.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service.
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// GetAllListsWithCache retrieves the merged castlist view with a cache-aside
// pattern. Cache corruption or errors fall back to the engine, never fail the
// read.
func (c *CacheService) GetAllListsWithCache(ctx context.Context, communityID string, fallback func(ctx context.Context) ([]*domain.Castlist, error)) ([]*domain.Castlist, error) {
	cacheKey := c.redis.KeyBuilder.KeyCommunityLists(communityID)

	cached, err := c.redis.Get(ctx, cacheKey)
	if err == nil && cached != "" {
		var lists []*domain.Castlist
		if unmarshalErr := json.Unmarshal([]byte(cached), &lists); unmarshalErr == nil {
			c.logger.Debug("castlist cache hit", zap.String("community_id", communityID))
			return lists, nil
		} else {
			c.logger.Warn("castlist cache corrupted, falling back to store",
				zap.String("community_id", communityID),
				zap.Error(unmarshalErr))
		}
	} else if err != nil && err != goredis.Nil {
		c.logger.Warn("castlist cache error, falling back to store",
			zap.String("community_id", communityID),
			zap.Error(err))
	}

	c.logger.Debug("castlist cache miss", zap.String("community_id", communityID))
	lists, err := fallback(ctx)
	if err != nil {
		return nil, err
	}

	go c.cacheListsAsync(communityID, lists)

	return lists, nil
}

// InvalidateCommunity drops the cached view for a community. Fire and forget;
// a stale entry only survives until its TTL anyway.
func (c *CacheService) InvalidateCommunity(communityID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cacheKey := c.redis.KeyBuilder.KeyCommunityLists(communityID)
		if err := c.redis.Delete(ctx, cacheKey); err != nil {
			c.logger.Error("failed to invalidate castlist cache",
				zap.String("community_id", communityID),
				zap.Error(err))
			return
		}
		c.logger.Debug("castlist cache invalidated", zap.String("community_id", communityID))
	}()
}

// cacheListsAsync writes the merged view to the cache off the request path.
func (c *CacheService) cacheListsAsync(communityID string, lists []*domain.Castlist) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(lists)
	if err != nil {
		c.logger.Error("failed to marshal castlists for caching",
			zap.String("community_id", communityID),
			zap.Error(err))
		return
	}

	cacheKey := c.redis.KeyBuilder.KeyCommunityLists(communityID)
	if err := c.redis.Set(ctx, cacheKey, string(data), redis.TTLCommunityLists); err != nil {
		c.logger.Error("failed to cache castlists",
			zap.String("community_id", communityID),
			zap.Error(err))
		return
	}
	c.logger.Debug("castlists cached", zap.String("community_id", communityID))
}
