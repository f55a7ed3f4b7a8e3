package services

import (
	"context"
	"testing"
	"time"

	"traffic-forecast-api/config"
)

func TestNewCacheServiceDisabled(t *testing.T) {
	cache, err := NewCacheService(config.RedisConfig{Port: 6379, TTLSeconds: 60})
	if err != nil {
		t.Fatalf("NewCacheService() error: %v", err)
	}
	if cache.Available() {
		t.Error("cache without host should be disabled")
	}
	if cache.TTL() != time.Minute {
		t.Errorf("TTL() = %v, want 1m", cache.TTL())
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	cache := &CacheService{}

	if err := cache.Set(ctx, "k", map[string]int{"a": 1}); err != nil {
		t.Errorf("Set() error: %v", err)
	}

	var dest map[string]int
	found, err := cache.Get(ctx, "k", &dest)
	if err != nil || found {
		t.Errorf("Get() = %v, %v; want miss with no error", found, err)
	}

	sent, err := cache.Publish(ctx, ForecastChannel, "msg")
	if err != nil || sent {
		t.Errorf("Publish() = %v, %v; want false, nil", sent, err)
	}
	if err := cache.Ping(ctx); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *CacheService
	if cache.Available() {
		t.Error("nil cache should not be available")
	}
	var dest string
	if found, err := cache.Get(context.Background(), "k", &dest); found || err != nil {
		t.Errorf("Get() on nil cache = %v, %v", found, err)
	}
	if cache.WithPrefix("v1") != nil {
		t.Error("WithPrefix on nil cache should stay nil")
	}
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		parts  []string
		want   string
	}{
		{"no prefix", "", []string{"traffic", "A", "B"}, "traffic:A:B"},
		{"with prefix", "rf-abc", []string{"traffic", "A", "B"}, "rf-abc:traffic:A:B"},
		{"single part", "rf-abc", []string{"locations"}, "rf-abc:locations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := (&CacheService{}).WithPrefix(tt.prefix)
			if got := cache.Key(tt.parts...); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}
