package config

import "time"

// RateLimitConfig configures the token bucket that guards reservation
// creation.  Each bucket holds Capacity tokens and regains RefillTokens
// every RefillInterval; idle buckets expire after TTL.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string // "ip", "user", "ip_user" or "ip_user_route"
	Prefix         string
	Debug          bool // adds X-RateLimit-* headers
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  RATE_LIMIT_BURST and
// RATE_LIMIT_REFILL_EVERY are shorthands overriding the capacity and the
// refill period.
func LoadRateLimitConfig() RateLimitConfig {
	return loadRateLimit(osEnv())
}

func loadRateLimit(e *envReader) RateLimitConfig {
	c := RateLimitConfig{
		Enabled:        e.boolean("RATE_LIMIT_ENABLED", true),
		Capacity:       e.integer("RATE_LIMIT_CAPACITY", 10),
		RefillTokens:   e.integer("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: e.dur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
		TTL:            e.dur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    e.str("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:         e.str("RATE_LIMIT_PREFIX", "rl"),
		Debug:          e.boolean("RATE_LIMIT_DEBUG", false),
	}
	if b := e.integer("RATE_LIMIT_BURST", -1); b > 0 {
		c.Capacity = b
	}
	if every := e.dur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
		c.RefillTokens = 1
		c.RefillInterval = every
	}
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	// A bucket must outlive a few refill periods or it would reset to full.
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
	return c
}
