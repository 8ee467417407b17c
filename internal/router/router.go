// Package router maps the HTTP surface onto handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/vitrinshop/vitrin/internal/handler"
	"github.com/vitrinshop/vitrin/internal/middleware"
)

// Handlers bundles everything the router wires up.
type Handlers struct {
	Catalog       *handler.CatalogHandler
	Slots         *handler.SlotHandler
	Bookings      *handler.BookingHandler
	Orders        *handler.OrderHandler
	Schedule      *handler.ScheduleHandler
	SellerBooking *handler.SellerBookingHandler
	SellerOrder   *handler.SellerOrderHandler
}

// RegisterRoutes registers the health endpoint.  It carries no middleware
// so probes succeed even when Redis or the broker are down.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the storefront endpoints.  They are
// unauthenticated; rateLimit guards them against abuse and cache fronts
// the slot listing.  cache may be a pass-through.
func RegisterPublic(e *echo.Echo, h Handlers, rateLimit, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", rateLimit)

	g.GET("/sellers/:username", h.Catalog.Storefront, cache)
	g.GET("/services/:id/slots", h.Slots.ListSlots, cache)

	g.POST("/bookings", h.Bookings.Create)
	g.POST("/bookings/:id/cancel", h.Bookings.Cancel)
	g.GET("/bookings/:id", h.Bookings.Get)

	g.POST("/orders", h.Orders.Create)
	g.GET("/orders/lookup", h.Orders.Lookup)
}

// RegisterSeller registers the seller endpoints behind JWT auth.  The
// authenticated seller ID flows from the token into every handler; no
// seller endpoint accepts a seller ID from the request.
func RegisterSeller(e *echo.Echo, h Handlers, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/v1/seller", middleware.SellerAuth(jwtSecret), rateLimit)

	g.GET("/schedule", h.Schedule.GetSchedule)
	g.PUT("/schedule/:weekday", h.Schedule.SetDayWindow)
	g.POST("/schedule/:weekday/breaks", h.Schedule.AddBreak)
	g.DELETE("/schedule/:weekday", h.Schedule.CloseDay)
	g.PUT("/policy", h.Schedule.UpdatePolicy)

	g.GET("/bookings", h.SellerBooking.List)
	g.POST("/bookings/:id/status", h.SellerBooking.UpdateStatus)

	g.POST("/orders", h.SellerOrder.Create)
	g.GET("/orders", h.SellerOrder.List)
	g.POST("/orders/:id/status", h.SellerOrder.UpdateStatus)
}
