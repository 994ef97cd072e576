package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs. Refresh runs invalidate explicitly, so these only bound
// staleness when an invalidation is missed.
const (
	TrendingCacheTTL   = 15 * time.Minute
	CompetitorCacheTTL = 15 * time.Minute
)

// CacheService provides a Redis cache-aside layer for the trending and
// competitor read endpoints. The pipeline invalidates entries after each
// successful reconciliation.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or the
// connection fails, it returns a CacheService with a nil client and all
// operations become no-ops.
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Println("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, caching disabled: %v", redisURL, err)
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, caching disabled: %v", err)
		return &CacheService{}
	}

	log.Println("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetTrending retrieves a cached trending response for a project. Returns
// nil when not cached or caching is disabled.
func (c *CacheService) GetTrending(ctx context.Context, projectID string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, trendingKey(projectID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetTrending stores a trending response.
func (c *CacheService) SetTrending(ctx context.Context, projectID string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, trendingKey(projectID), b, TrendingCacheTTL).Err()
}

// InvalidateTrending drops a project's cached trending set. Called after a
// replace-set commit so readers never see the superseded ranking.
func (c *CacheService) InvalidateTrending(ctx context.Context, projectID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, trendingKey(projectID)).Err()
}

// GetCompetitor retrieves a cached competitor video listing.
func (c *CacheService) GetCompetitor(ctx context.Context, competitorID string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, competitorKey(competitorID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetCompetitor stores a competitor video listing.
func (c *CacheService) SetCompetitor(ctx context.Context, competitorID string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, competitorKey(competitorID), b, CompetitorCacheTTL).Err()
}

// InvalidateCompetitor drops a competitor's cached listing after an upsert.
func (c *CacheService) InvalidateCompetitor(ctx context.Context, competitorID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, competitorKey(competitorID)).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func trendingKey(projectID string) string {
	return fmt.Sprintf("trending:%s", projectID)
}

func competitorKey(competitorID string) string {
	return fmt.Sprintf("competitor:%s", competitorID)
}
