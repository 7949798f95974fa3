package config

import "time"

// CacheConfig defines settings for the catalog response cache.  When
// Enabled is false or no Redis client is configured, caching is
// disabled.  Performance and reservation routes are never cached,
// whatever this configuration says, because they expose seat counts.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool // HTTP methods to cache, upper-case
	TTL          time.Duration
	KeyStrategy  string // "route" or "route_query"
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	return loadCache(osEnv())
}

func loadCache(e *envReader) CacheConfig {
	c := CacheConfig{
		Enabled:      e.boolean("CACHE_ENABLED", true),
		Methods:      e.list("CACHE_METHODS", "GET"),
		TTL:          e.dur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  e.str("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       e.str("CACHE_PREFIX", "cache"),
		MaxBodyBytes: e.integer("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if c.TTL <= 0 {
		c.TTL = time.Second
	}
	return c
}
