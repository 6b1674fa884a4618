package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache stores geocoding results by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]Location, bool)
	Set(ctx context.Context, key string, locs []Location)
}

// Cached wraps a Geocoder with a result cache. Empty results are not cached
// so a transient provider miss does not stick.
type Cached struct {
	Next  Geocoder
	Cache Cache
}

// Geocode implements Geocoder.
func (c *Cached) Geocode(ctx context.Context, address string) ([]Location, error) {
	key := cacheKey(address)
	if locs, ok := c.Cache.Get(ctx, key); ok {
		return locs, nil
	}
	locs, err := c.Next.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	if len(locs) > 0 {
		c.Cache.Set(ctx, key, locs)
	}
	return locs, nil
}

func cacheKey(address string) string {
	return "geocode:" + strings.ToLower(strings.Join(strings.Fields(address), " "))
}

// MemoryCache is a process-local cache.
type MemoryCache struct {
	c *cache.Cache
}

// NewMemoryCache returns a cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{c: cache.New(ttl, 2*ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]Location, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	locs, ok := v.([]Location)
	return locs, ok
}

func (m *MemoryCache) Set(_ context.Context, key string, locs []Location) {
	m.c.SetDefault(key, locs)
}

// RedisCache shares results across instances. Redis failures degrade to a
// cache miss.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to url and verifies the connection.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]Location, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("geocode cache get failed")
		return nil, false
	}
	var locs []Location
	if err := json.Unmarshal(raw, &locs); err != nil {
		return nil, false
	}
	return locs, true
}

func (r *RedisCache) Set(ctx context.Context, key string, locs []Location) {
	raw, err := json.Marshal(locs)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("geocode cache set failed")
	}
}

// Close releases the redis connection pool.
func (r *RedisCache) Close() error { return r.client.Close() }
