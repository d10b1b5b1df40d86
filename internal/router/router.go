// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kindling/sponsor-engine/internal/config"
	"github.com/kindling/sponsor-engine/internal/handler"
	"github.com/kindling/sponsor-engine/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication or
// infrastructure: currently only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication surface.  Unauthenticated
// operations live under /v1/auth; /v1/me sits behind the JWT
// middleware and accepts both roles.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout takes no JWT middleware so a session with an expired
	// access token can still end itself with its refresh token.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("PUBLISHER", "SPONSOR"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated serving surface.  The
// slot detail page is cacheable; the widget endpoint is rate limited
// and deliberately NOT cached, since every request must draw a fresh
// rotation winner.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, rdb *redis.Client) {
	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()

	e.GET("/v1/slots/:id", p.GetPublicSlot, middleware.NewRedisCache(cacheCfg, rdb))
	e.GET("/v1/widget", p.ServeAd, middleware.NewTokenBucket(rateCfg, rdb))
}

// RegisterPayments registers the payment processor webhook.  It is
// authenticated by shared token inside the handler, not by JWT; the
// processor is not a user.
func RegisterPayments(e *echo.Echo, p *handler.PaymentHandler) {
	e.POST("/v1/payments/confirm", p.ConfirmPayment)
}
