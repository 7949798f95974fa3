package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/theater-booking/internal/config"
)

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func TestResponseCacheReplaysAndInvalidates(t *testing.T) {
	_, rdb := newRedis(t)
	e := echo.New()
	genres := []string{"drama"}
	calls := 0
	cache := ResponseCache(cacheConfig(), rdb)
	e.GET("/genres", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, genres)
	}, cache)
	e.POST("/genres", func(c echo.Context) error {
		genres = append(genres, "comedy")
		return c.NoContent(http.StatusCreated)
	}, cache)

	first := do(e, http.MethodGet, "/genres", "")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := do(e, http.MethodGet, "/genres", "")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, echo.MIMEApplicationJSON, second.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 1, calls)

	// A new query string is a separate entry.
	assert.Equal(t, "MISS", do(e, http.MethodGet, "/genres?x=1", "").Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)

	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/genres", "").Code)

	third := do(e, http.MethodGet, "/genres", "")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Contains(t, third.Body.String(), "comedy")
	assert.Equal(t, 3, calls)
}

func TestResponseCacheSkipsErrors(t *testing.T) {
	_, rdb := newRedis(t)
	e := echo.New()
	calls := 0
	e.GET("/plays/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
	}, ResponseCache(cacheConfig(), rdb))

	do(e, http.MethodGet, "/plays/9", "")
	do(e, http.MethodGet, "/plays/9", "")
	assert.Equal(t, 2, calls)
}

func TestResponseCacheWithoutRedis(t *testing.T) {
	e := echo.New()
	e.GET("/genres", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, ResponseCache(cacheConfig(), nil))

	rec := do(e, http.MethodGet, "/genres", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
