package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/newkenyan/property-search/internal/search/domain"
)

// LocationCache is an in-process read-through cache over the location
// catalog. Catalog rows change rarely and every search resolves at least one,
// so a short TTL removes most lookups from the request path. Negative
// lookups are not cached; a missing location is already a cheap store miss.
type LocationCache struct {
	inner domain.LocationRepository
	cache *gocache.Cache
}

// NewLocationCache wraps inner with a TTL cache.
func NewLocationCache(inner domain.LocationRepository, ttl time.Duration) *LocationCache {
	return &LocationCache{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// FindBySlug implements domain.LocationRepository.
func (c *LocationCache) FindBySlug(ctx context.Context, slug string) (*domain.Location, error) {
	key := "slug:" + slug
	if cached, ok := c.cache.Get(key); ok {
		return cached.(*domain.Location), nil
	}
	loc, err := c.inner.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, loc)
	return loc, nil
}

// FindByName implements domain.LocationRepository.
func (c *LocationCache) FindByName(ctx context.Context, name string, locType domain.LocationType) (*domain.Location, error) {
	key := "name:" + string(locType) + ":" + strings.ToLower(name)
	if cached, ok := c.cache.Get(key); ok {
		return cached.(*domain.Location), nil
	}
	loc, err := c.inner.FindByName(ctx, name, locType)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, loc)
	return loc, nil
}

// ListActive implements domain.LocationRepository. The full catalog walk is
// only used by the batch auditor, so it is passed through uncached.
func (c *LocationCache) ListActive(ctx context.Context) ([]*domain.Location, error) {
	return c.inner.ListActive(ctx)
}
