package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // the Echo web framework handles routing
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/stock-hold-reservation/internal/config"
    "github.com/iliyamo/stock-hold-reservation/internal/handler"
    "github.com/iliyamo/stock-hold-reservation/internal/middleware"
)

// Deps bundles everything route registration needs.  Redis may be nil,
// in which case the rate limiter and catalog cache become
// pass-throughs.
type Deps struct {
    Items        *handler.ItemHandler
    Reservations *handler.ReservationHandler
    Admin        *handler.AdminHandler
    Redis        *redis.Client
    JWTSecret    string
}

// Register wires all routes onto the provided Echo instance.
//
// The public catalog and the health check take no identity.  Every
// reservation route runs behind the identity middleware (the engine
// needs an actor id) and the shared rate limiter.  The admin reset is
// registered unconditionally; the handler itself decides whether it is
// reachable.
func Register(e *echo.Echo, d Deps) {
    e.GET("/healthz", handler.Health)

    cache := middleware.CatalogCache(config.LoadCacheConfig(), d.Redis)
    e.GET("/v1/items", d.Items.ListItems, cache)

    limited := e.Group("/v1")
    limited.Use(middleware.Identity(d.JWTSecret))
    limited.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis))
    limited.POST("/reservations", d.Reservations.Create)
    limited.GET("/reservations", d.Reservations.List)
    limited.POST("/reservations/:id/complete", d.Reservations.Complete)
    limited.DELETE("/reservations/:id", d.Reservations.Cancel)

    e.POST("/v1/admin/reset", d.Admin.Reset)
}
