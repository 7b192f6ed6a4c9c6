package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/env"
)

var ctx = context.Background()

// Cache is a time-bounded key/value store. A ttl of zero or less means the
// entry never expires until it is deleted or overwritten.
type Cache interface {
	Get(key string) (any, bool)
	Put(key string, value any, ttl time.Duration)
	Delete(key string)
}

var defaultCache Cache = NewMemoryCache()

// Default returns the process-wide cache instance.
func Default() Cache {
	return defaultCache
}

// SetDefault replaces the process-wide cache instance.
func SetDefault(c Cache) {
	if c != nil {
		defaultCache = c
	}
}

// SetupCache switches the default cache to the configured Redis server when
// CACHE_HOST is set; otherwise the in-process cache stays in place.
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "")
	if host == "" {
		return
	}
	port := env.GetEnv("CACHE_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test the connection
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to cache server: %v", err)
		return
	}
	log.Printf("Successfully connected to cache server: %s", pong)
	defaultCache = NewRedisCache(client)
}

type memoryEntry struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

// MemoryCache is an in-process TTL cache. Entries are replaced wholesale on
// Put and reaped lazily on Get.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

func (c *MemoryCache) Put(key string, value any, ttl time.Duration) {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// RedisCache stores values on a shared Redis server. Values are kept as JSON
// bytes, so Get always returns []byte.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(key string) (any, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Put(key string, value any, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	data, ok := value.([]byte)
	if !ok {
		var err error
		data, err = json.Marshal(value)
		if err != nil {
			log.Printf("cache: could not encode value for key %s: %v", key, err)
			return
		}
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("cache: could not store key %s: %v", key, err)
	}
}

func (c *RedisCache) Delete(key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("cache: could not delete key %s: %v", key, err)
	}
}
