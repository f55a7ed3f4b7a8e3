package handlers

import (
	"context"
	"log"

	"traffic-forecast-api/metrics"
	"traffic-forecast-api/services"
)

// responseCache wraps the Redis cache with hit/miss accounting. Lookup
// failures are logged and treated as misses.
type responseCache struct {
	cache   *services.CacheService
	metrics *metrics.Collector
}

func (r responseCache) lookup(ctx context.Context, key string, dest any) bool {
	if !r.cache.Available() {
		return false
	}
	found, err := r.cache.Get(ctx, key, dest)
	if err != nil {
		log.Printf("Cache get %s failed: %v", key, err)
	}
	if found && err == nil {
		r.metrics.CacheHits.Inc()
		return true
	}
	r.metrics.CacheMisses.Inc()
	return false
}

func (r responseCache) store(key string, value any) {
	if !r.cache.Available() {
		return
	}
	go func() {
		if err := r.cache.Set(context.Background(), key, value); err != nil {
			log.Printf("Cache set %s failed: %v", key, err)
		}
	}()
}

func (r responseCache) key(parts ...string) string {
	return r.cache.Key(parts...)
}
