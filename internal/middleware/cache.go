package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/theater-booking/internal/config"
)

// cachedResponse is what the cache stores per key.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// bodyRecorder tees the response body into buf, up to limit bytes.
type bodyRecorder struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (w *bodyRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if !w.truncated {
		if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
			w.truncated = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// routePrefix is the key prefix shared by every cached variant of a route.
func routePrefix(cfg config.CacheConfig, c echo.Context) string {
	return cfg.Prefix + ":route:" + c.Path() + ":"
}

func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	variant := "-"
	if strings.ToLower(cfg.KeyStrategy) != "route" {
		// Path parameters are part of the URL path, so hash the whole request URI.
		sum := sha1.Sum([]byte(c.Request().URL.RequestURI()))
		variant = fmt.Sprintf("%x", sum)
	}
	return routePrefix(cfg, c) + variant
}

// ResponseCache caches successful responses of cfg.Methods in Redis and
// replays them with X-Cache: HIT.  A successful request with any other
// method on the same route drops the cached variants of that route, so
// catalog lists reflect new entries immediately.  It is a no-op when
// disabled or when rdb is nil.
func ResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	log := logrus.WithField("component", "cache")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if !cfg.Methods[c.Request().Method] {
				err := next(c)
				if err == nil && c.Response().Status < 300 {
					invalidateRoute(ctx, rdb, routePrefix(cfg, c), log)
				}
				return err
			}

			key := cacheKey(cfg, c)
			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil {
					h := c.Response().Header()
					for k, vals := range cached.Header {
						h[k] = vals
					}
					h.Set("X-Cache", "HIT")
					return c.Blob(cached.Status, h.Get(echo.HeaderContentType), cached.Body)
				}
			} else if err != redis.Nil {
				log.WithError(err).Warn("cache read failed")
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.truncated {
				return nil
			}

			header := c.Response().Header().Clone()
			header.Del("X-Cache")
			header.Del(echo.HeaderContentLength)
			header.Del(echo.HeaderXRequestID)
			payload, err := json.Marshal(cachedResponse{Status: rec.status, Header: header, Body: rec.buf.Bytes()})
			if err != nil {
				return nil
			}
			// The request context may already be cancelled once the body is written.
			setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
			defer cancel()
			if err := rdb.Set(setCtx, key, payload, cfg.TTL).Err(); err != nil {
				log.WithError(err).Warn("cache write failed")
			}
			return nil
		}
	}
}

func invalidateRoute(ctx context.Context, rdb *redis.Client, prefix string, log *logrus.Entry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	iter := rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.WithError(err).Warn("cache scan failed")
		return
	}
	if len(keys) > 0 {
		if err := rdb.Del(ctx, keys...).Err(); err != nil {
			log.WithError(err).Warn("cache invalidation failed")
		}
	}
}
