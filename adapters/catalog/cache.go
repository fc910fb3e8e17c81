package catalog

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	"instance-allocator/core/types"
	"instance-allocator/internal/logging"
)

const cacheKey = "catalog"

// CachedSource wraps a source and reuses its catalog for a TTL
type CachedSource struct {
	inner  Source
	cache  *ttlcache.Cache[string, types.Catalog]
	logger *zap.Logger
}

// NewCachedSource creates a caching wrapper. Failed loads are not cached.
func NewCachedSource(inner Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner: inner,
		cache: ttlcache.New[string, types.Catalog](
			ttlcache.WithTTL[string, types.Catalog](ttl),
			ttlcache.WithDisableTouchOnHit[string, types.Catalog](),
		),
		logger: logging.Named("catalog.cache"),
	}
}

// Name returns the wrapped source name
func (s *CachedSource) Name() string {
	return s.inner.Name()
}

// Load returns the cached catalog or loads and stores a fresh one
func (s *CachedSource) Load(ctx context.Context) (types.Catalog, error) {
	s.cache.DeleteExpired()

	if item := s.cache.Get(cacheKey); item != nil {
		return item.Value(), nil
	}

	s.logger.Debug("loading catalog", zap.String("source", s.inner.Name()))
	c, err := s.inner.Load(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cacheKey, c, ttlcache.DefaultTTL)
	return c, nil
}

// Invalidate drops the cached catalog
func (s *CachedSource) Invalidate() {
	s.cache.Delete(cacheKey)
}
