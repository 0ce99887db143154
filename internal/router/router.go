// Package router binds handlers to their routes and applies the
// per-route middleware (authentication, role checks, response caching).
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/sports-facility-booking/internal/handler"
    "github.com/iliyamo/sports-facility-booking/internal/metrics"
    "github.com/iliyamo/sports-facility-booking/internal/middleware"
    "github.com/iliyamo/sports-facility-booking/internal/model"
)

// RegisterSystemRoutes wires the health probe and the Prometheus scrape
// endpoint.  Both are public and unauthenticated.
func RegisterSystemRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
    e.GET("/metrics", metrics.Handler())
}

// RegisterAuthRoutes wires signup, login, the two refresh variants, logout
// and the authenticated profile endpoint.
func RegisterAuthRoutes(e *echo.Echo, h *handler.AuthHandler, jwt echo.MiddlewareFunc) {
    g := e.Group("/auth")
    g.POST("/signup", h.Signup)
    g.POST("/login", h.Login)
    g.POST("/refresh-token", h.RefreshToken) // new access token, refresh kept
    g.POST("/refresh", h.Refresh)            // rotation: old revoked, new pair issued
    g.POST("/logout", h.Logout)

    e.GET("/me", h.Me, jwt)
}

// RegisterUserRoutes wires account management: password change for the
// session owner, status switches and soft deletion for admins.
func RegisterUserRoutes(e *echo.Echo, h *handler.UserHandler, jwt echo.MiddlewareFunc) {
    admin := middleware.RequireRole(model.RoleAdmin)

    e.PUT("/me/password", h.ChangePassword, jwt)
    e.PATCH("/users/:id/status", h.SetStatus, jwt, admin)
    e.DELETE("/users/:id", h.Delete, jwt, admin)
}

// RegisterFacilityRoutes wires the facility CRUD.  Reads are public and go
// through the Redis response cache; writes require the admin role.
func RegisterFacilityRoutes(e *echo.Echo, h *handler.FacilityHandler, jwt, cache echo.MiddlewareFunc) {
    admin := middleware.RequireRole(model.RoleAdmin)

    e.GET("/facility", h.List, cache)
    e.GET("/facility/:id", h.Get, cache)
    e.POST("/facility", h.Create, jwt, admin)
    e.PUT("/facility/:id", h.Update, jwt, admin)
    e.DELETE("/facility/:id", h.Delete, jwt, admin)
}

// RegisterBookingRoutes wires availability and the booking lifecycle.
// Availability is public; everything else requires a valid access token,
// and the full listing additionally requires admin.
func RegisterBookingRoutes(e *echo.Echo, h *handler.BookingHandler, avail *handler.AvailabilityHandler, jwt echo.MiddlewareFunc) {
    e.GET("/check-availability", avail.Check)

    e.POST("/bookings", h.Create, jwt)
    e.GET("/bookings", h.ListAll, jwt, middleware.RequireRole(model.RoleAdmin))
    e.GET("/bookings/user", h.ListMine, jwt)
    e.DELETE("/bookings/:id", h.Cancel, jwt)
}

// RegisterPaymentRoutes wires the capture endpoint.
func RegisterPaymentRoutes(e *echo.Echo, h *handler.PaymentHandler, jwt echo.MiddlewareFunc) {
    e.POST("/pay", h.Pay, jwt)
}
