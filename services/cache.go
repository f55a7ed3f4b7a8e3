package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"traffic-forecast-api/config"

	"github.com/redis/go-redis/v9"
)

// ForecastChannel receives every forecast served by /api/predict.
const ForecastChannel = "traffic:forecasts"

const pingAttempts = 5

// CacheService is a Redis-backed response cache. A service without a client
// is disabled: lookups miss and writes are dropped.
type CacheService struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCacheService connects to Redis when cfg names a host. With no host it
// returns a disabled service and no error.
func NewCacheService(cfg config.RedisConfig) (*CacheService, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if !cfg.Enabled() {
		return &CacheService{ttl: ttl}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var lastErr error
	for i := 0; i < pingAttempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		lastErr = client.Ping(ctx).Err()
		cancel()
		if lastErr == nil {
			return &CacheService{client: client, ttl: ttl}, nil
		}
		log.Printf("Redis ping attempt %d/%d failed: %v", i+1, pingAttempts, lastErr)
		time.Sleep(time.Second)
	}

	client.Close()
	return &CacheService{ttl: ttl}, fmt.Errorf("redis ping failed after %d attempts: %w", pingAttempts, lastErr)
}

// WithPrefix returns a view of the cache whose keys are namespaced by
// prefix. Callers pass a digest of the loaded datasets so responses computed
// from earlier data are never served.
func (s *CacheService) WithPrefix(prefix string) *CacheService {
	if s == nil {
		return nil
	}
	return &CacheService{client: s.client, prefix: prefix, ttl: s.ttl}
}

func (s *CacheService) Available() bool {
	return s != nil && s.client != nil
}

func (s *CacheService) TTL() time.Duration {
	if s == nil {
		return 0
	}
	return s.ttl
}

// Key joins parts into a cache key under the service prefix.
func (s *CacheService) Key(parts ...string) string {
	key := strings.Join(parts, ":")
	if s == nil || s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Get decodes the cached value into dest and reports whether it was found.
func (s *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	if !s.Available() {
		return false, nil
	}
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CacheService) Set(ctx context.Context, key string, value any) error {
	if !s.Available() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

// Publish reports whether the message went out; a disabled cache publishes
// nothing.
func (s *CacheService) Publish(ctx context.Context, channel string, message any) (bool, error) {
	if !s.Available() {
		return false, nil
	}
	data, err := json.Marshal(message)
	if err != nil {
		return false, err
	}
	if err := s.client.Publish(ctx, channel, data).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CacheService) Ping(ctx context.Context) error {
	if !s.Available() {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

func (s *CacheService) Close() error {
	if !s.Available() {
		return nil
	}
	return s.client.Close()
}
