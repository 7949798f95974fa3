// Package router registers the HTTP routes of the theater API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/theater-booking/internal/config"
	"github.com/iliyamo/theater-booking/internal/handler"
	"github.com/iliyamo/theater-booking/internal/middleware"
)

// Deps collects what RegisterRoutes wires together.  Redis may be nil,
// which turns rate limiting and caching into pass-through.
type Deps struct {
	Catalog      *handler.CatalogHandler
	Performances *handler.PerformanceHandler
	Reservations *handler.ReservationHandler

	JWTSecret string
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
}

// RegisterRoutes mounts /healthz and the /api/theater API.  Every API
// route requires a bearer token; catalog writes and performance
// management additionally require the ADMIN role.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api/theater", middleware.JWTAuth(d.JWTSecret))
	admin := middleware.RequireRole(middleware.RoleAdmin)

	// Catalog lists change only through the POSTs below, which drop the
	// cached copies of their route.
	cache := middleware.ResponseCache(d.Cache, d.Redis)

	c := d.Catalog
	api.GET("/actors", c.ListActors, cache)
	api.POST("/actors", c.CreateActor, admin, cache)
	api.GET("/genres", c.ListGenres, cache)
	api.POST("/genres", c.CreateGenre, admin, cache)
	api.GET("/theater-halls", c.ListHalls, cache)
	api.POST("/theater-halls", c.CreateHall, admin, cache)
	api.GET("/plays", c.ListPlays, cache)
	api.POST("/plays", c.CreatePlay, admin, cache)
	api.GET("/plays/:id", c.GetPlay, cache)

	p := d.Performances
	api.GET("/performances", p.ListPerformances)
	api.POST("/performances", p.CreatePerformance, admin)
	api.GET("/performances/:id", p.GetPerformance)
	api.DELETE("/performances/:id", p.DeletePerformance, admin)
	api.GET("/performances/:id/available-seats", p.AvailableSeats)

	r := d.Reservations
	api.GET("/reservations", r.ListReservations)
	api.POST("/reservations", r.CreateReservation, middleware.RateLimit(d.RateLimit, d.Redis))
}
