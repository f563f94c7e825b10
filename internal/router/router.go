package router // router defines how HTTP routes are registered for the gateway

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-world/internal/handler"
	"github.com/iliyamo/cinema-world/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterWorld registers the public lobby endpoints.  These serve the
// world clients and require no authentication.
func RegisterWorld(e *echo.Echo, w *handler.WorldHandler) {
	// Lobby listing: every room with its open flag.
	e.GET("/v1/rooms", w.GetRooms)
	// Screen state of a cinema room (waiting/playing/ended/no session).
	e.GET("/v1/rooms/:id/screen", w.GetScreen)
	// Seat occupancy map of a cinema room.
	e.GET("/v1/rooms/:id/seats", w.GetSeats)
}

// RegisterStaff registers the operator endpoints.  Login is open; the
// room-flag endpoints sit behind JWT auth, a role gate and the
// rate-limit middleware when one is supplied.
func RegisterStaff(e *echo.Echo, a *handler.StaffAuthHandler, r *handler.StaffRoomHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	e.POST("/v1/staff/login", a.Login)

	g := e.Group("/v1/staff")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("STAFF", "ADMIN"))
	if rateLimit != nil {
		g.Use(rateLimit)
	}
	g.GET("/me", a.Me)
	g.GET("/rooms", r.ListRooms)
	// Flipping the flag is the one write staff perform here; closing a
	// room evicts its occupants through the published flag change.
	g.PATCH("/rooms/:id/flag", r.SetFlag)
}
