package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tableside/floor-manager/internal/config"
	"github.com/tableside/floor-manager/internal/handler"
	"github.com/tableside/floor-manager/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// that load balancers and monitoring systems can probe.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterFloor registers every staff-facing endpoint.  All of them
// require a valid staff JWT with the HOST or MANAGER role; the token
// itself is issued by the upstream reservations platform, this service
// only verifies it.  The rate limiter applies to the whole group so a
// runaway tablet cannot hammer the upstream API.
func RegisterFloor(e *echo.Echo, h *handler.FloorHandler, a *handler.AuditHandler, jwtSecret string, rl config.RateLimitConfig, cache config.CacheConfig, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.StaffAuth(jwtSecret))
	g.Use(middleware.RequireRole("HOST", "MANAGER"))
	g.Use(middleware.NewTokenBucket(rl, rdb))

	// Floor state.  Deliberately uncached: every render reflects a
	// fresh upstream fetch.
	g.GET("/floor", h.GetFloor)
	g.POST("/floor/seats/:id/click", h.SeatClick)

	// Read-only lists backing the occupant picker and the side panels.
	g.GET("/reservations", h.ListReservations)
	g.GET("/waitlist", h.ListWaitlist)

	// Seat wizard.  One session per staff member, keyed by JWT subject.
	g.GET("/wizard", h.GetWizard)
	g.POST("/wizard", h.OpenWizard)
	g.POST("/wizard/occupant", h.ChooseOccupant)
	g.POST("/wizard/seed", h.SeedWizard)
	g.POST("/wizard/submit", h.SubmitWizard)
	g.POST("/wizard/cancel", h.CancelWizard)
	g.POST("/wizard/zoom", h.SetZoom)

	// Seat detail dialog actions.
	g.POST("/occupants/:type/:id/:action", h.OccupantCommand)

	// Shift audit trail, managers only.  This is the one endpoint the
	// response cache applies to: it is served from the local database
	// and tolerates a few seconds of staleness.
	g.GET("/audit", a.List, middleware.RequireRole("MANAGER"), middleware.NewRedisCache(cache, rdb))
}
