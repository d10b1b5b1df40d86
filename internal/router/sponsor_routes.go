package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kindling/sponsor-engine/internal/handler"
	"github.com/kindling/sponsor-engine/internal/middleware"
)

// RegisterSponsor registers SPONSOR-scoped endpoints under /v1.  All
// routes require a valid JWT and the SPONSOR role.  Sponsors can book
// slots, list and inspect their own sponsorships, and cancel them.
func RegisterSponsor(e *echo.Echo, s *handler.SponsorHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("SPONSOR"),
	)

	g.POST("/sponsorships", s.CreateSponsorship)
	g.GET("/my-sponsorships", s.ListMySponsorships)
	g.GET("/sponsorships/:id", s.GetSponsorship)
	g.DELETE("/sponsorships/:id", s.CancelSponsorship)
}
