package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/kindling/sponsor-engine/internal/booking"
	"github.com/kindling/sponsor-engine/internal/config"
	"github.com/kindling/sponsor-engine/internal/database"
	"github.com/kindling/sponsor-engine/internal/handler"
	"github.com/kindling/sponsor-engine/internal/queue"
	"github.com/kindling/sponsor-engine/internal/repository"
	"github.com/kindling/sponsor-engine/internal/router"
	"github.com/kindling/sponsor-engine/internal/service/sweeper"
	"github.com/kindling/sponsor-engine/internal/serving"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional infrastructure; nil disables caching and rate
	// limiting rather than failing startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: response cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	sites := repository.NewSiteRepo(db)
	slots := repository.NewAdSlotRepo(db)
	sponsorships := repository.NewSponsorshipRepo(db)

	ledger := repository.NewSQLLedger(db, slots, sponsorships)
	allocator := booking.NewAllocator(ledger, cfg.PaymentSimulate)
	if cfg.PaymentSimulate {
		log.Println("PAYMENT_SIMULATE is on: sponsorships activate without the payment webhook")
	}
	selector := serving.NewSelector(sponsorships)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublisher(e, handler.NewPublisherHandler(sites, slots), cfg.JWTSecret)
	router.RegisterSponsor(e, handler.NewSponsorHandler(allocator, sponsorships), cfg.JWTSecret)
	router.RegisterPayments(e, handler.NewPaymentHandler(cfg, allocator, sponsorships))
	router.RegisterPublic(e, handler.NewPublicHandler(sites, slots, sponsorships, selector), rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx, sponsorships, cfg.SweepInterval)
	go func() {
		if err := queue.StartActivationConsumer(); err != nil {
			log.Printf("activation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
