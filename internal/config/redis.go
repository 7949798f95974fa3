package config

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisOptions builds client options from REDIS_* variables:
//
//	REDIS_ADDR                 host:port (REDIS_HOST and REDIS_PORT take precedence)
//	REDIS_PASSWORD             optional password
//	REDIS_DB                   database number, default 0
//	REDIS_TLS                  "true" or "1" to enable TLS
func RedisOptions() *redis.Options {
	return redisOptions(osEnv())
}

func redisOptions(e *envReader) *redis.Options {
	addr := e.str("REDIS_ADDR", "localhost:6379")
	if host, port := e.get("REDIS_HOST"), e.get("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	opts := &redis.Options{
		Addr:     addr,
		Password: e.get("REDIS_PASSWORD"),
		DB:       e.integer("REDIS_DB", 0),
	}
	if e.boolean("REDIS_TLS", false) {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// NewRedisClient connects to Redis and pings it.  It returns nil when
// the server is unreachable; rate limiting and caching then degrade to
// pass-through.
func NewRedisClient() *redis.Client {
	opts := RedisOptions()
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).WithField("addr", opts.Addr).Warn("redis unavailable; rate limiting and caching disabled")
		_ = client.Close()
		return nil
	}
	return client
}
