package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kindling/sponsor-engine/internal/handler"
	"github.com/kindling/sponsor-engine/internal/middleware"
)

// RegisterPublisher registers PUBLISHER-scoped endpoints under /v1.
// All routes require a valid JWT and the PUBLISHER role; ownership of
// the touched site or slot is checked per handler.
func RegisterPublisher(e *echo.Echo, p *handler.PublisherHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("PUBLISHER"),
	)

	// ---- Sites ----
	g.POST("/sites", p.CreateSite)
	g.GET("/sites", p.ListSites)
	g.GET("/sites/:id", p.GetSite)

	// ---- Slots ----
	// NOTE: slot detail for guests is the public GET /v1/slots/:id; only
	// mutation lives here.
	g.POST("/sites/:id/slots", p.CreateSlot)
	g.GET("/sites/:id/slots", p.ListSlots)
	g.PUT("/slots/:id", p.UpdateSlot)
	g.PATCH("/slots/:id", p.UpdateSlot)
	// Deactivation, not deletion: sponsorship history stays intact.
	g.DELETE("/slots/:id", p.DeactivateSlot)
}
