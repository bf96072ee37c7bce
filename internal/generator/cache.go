package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync"
	"time"
)

type cacheEntry struct {
	response  string
	expiresAt time.Time
}

// ResponseCache keeps raw provider responses that parsed into valid
// assumptions, keyed by provider and prompt. A nil cache is a valid,
// always-missing cache.
type ResponseCache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		store: make(map[string]cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

var (
	envCache     *ResponseCache
	envCacheOnce sync.Once
)

// CacheFromEnv returns the process-wide cache when ENABLE_GENERATION_CACHE=true,
// otherwise nil. GENERATION_CACHE_TTL overrides the one hour default.
func CacheFromEnv() *ResponseCache {
	if os.Getenv("ENABLE_GENERATION_CACHE") != "true" {
		return nil
	}
	envCacheOnce.Do(func() {
		ttl := time.Hour
		if s := os.Getenv("GENERATION_CACHE_TTL"); s != "" {
			if parsed, err := time.ParseDuration(s); err == nil {
				ttl = parsed
			}
		}
		envCache = NewResponseCache(ttl)
		go envCache.cleanup(5 * time.Minute)
	})
	return envCache
}

func (c *ResponseCache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[key]
	if !ok || c.now().After(entry.expiresAt) {
		return "", false
	}
	return entry.response, true
}

func (c *ResponseCache) Set(key, response string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = cacheEntry{response: response, expiresAt: c.now().Add(c.ttl)}
}

func (c *ResponseCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]cacheEntry)
}

// Prune drops expired entries and returns how many remain.
func (c *ResponseCache) Prune() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, key)
		}
	}
	return len(c.store)
}

func (c *ResponseCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		c.Prune()
	}
}

// CacheKey hashes the provider name and prompt into a fixed-size key.
func CacheKey(provider, prompt string) string {
	sum := sha256.Sum256([]byte(provider + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}
