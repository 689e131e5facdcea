package app

import (
	"context"
	"fmt"

	"github.com/quantfoot/pipeline/internal/config"
	"github.com/quantfoot/pipeline/internal/platform/cache"
	"github.com/quantfoot/pipeline/internal/platform/logging"
)

// NewCacheLoader picks the read-through cache backend: redis when REDIS_URL
// is set, in-process memory otherwise. A nil loader disables caching.
func NewCacheLoader(ctx context.Context, cfg config.Config, logger *logging.Logger) (*cache.Loader, func() error, error) {
	noop := func() error { return nil }
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.CacheEnabled {
		logger.Info("cache disabled", "reason", "CACHE_ENABLED=false")
		return nil, noop, nil
	}

	if cfg.RedisURL == "" {
		logger.Info("cache enabled", "backend", "memory", "ttl", cfg.CacheTTL.String())
		return cache.NewLoader(cache.NewMemoryStore(), cfg.CacheTTL, cfg.ServiceName), noop, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, noop, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("cache enabled", "backend", "redis", "ttl", cfg.CacheTTL.String())
	return cache.NewLoader(cache.NewRedisStore(client), cfg.CacheTTL, cfg.ServiceName), client.Close, nil
}
