package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/newkenyan/property-search/internal/search/domain"
	"github.com/newkenyan/property-search/internal/search/usecase"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResultCache keeps merged match results in Redis for the request path. The
// original site leaned on page-level revalidation for the same purpose; here
// the TTL plays that role.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewResultCache connects to Redis and verifies the connection.
func NewResultCache(addr string, ttl time.Duration, log *logger.Logger) (*ResultCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &ResultCache{
		client: client,
		ttl:    ttl,
		logger: log.Named("ResultCache"),
	}, nil
}

// Key derives the cache key for a search request. Every field that changes
// the result participates.
func Key(req usecase.SearchRequest) string {
	parts := []string{
		"match",
		req.LocationSlug,
		strings.ToLower(req.PropertyType),
		string(req.TransactionType),
		fmt.Sprintf("b%d", req.Bedrooms),
		fmt.Sprintf("p%.0f-%.0f", req.MinPrice, req.MaxPrice),
		strings.ToLower(req.City),
	}
	return strings.Join(parts, ":")
}

// Get returns the cached result for key, or nil on a miss. Cache failures
// are reported as misses; the store is the source of truth.
func (c *ResultCache) Get(ctx context.Context, key string) (*domain.MatchResult, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		c.logger.Warn("Result cache read failed", zap.String("key", key), zap.Error(err))
		return nil, nil
	}

	var result domain.MatchResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("Result cache entry corrupt, dropping", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		return nil, nil
	}
	return &result, nil
}

// Set stores a result under key for the configured TTL.
func (c *ResultCache) Set(ctx context.Context, key string, result *domain.MatchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Result cache write failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Close releases the Redis connection.
func (c *ResultCache) Close() error {
	return c.client.Close()
}
