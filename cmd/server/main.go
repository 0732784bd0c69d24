package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/config"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/database"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/handler"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/middleware"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/queue"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/router"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/service"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the join rate limiter.  A nil
	// client disables both; the API still works without it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, cache and rate limiting disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	designations := repository.NewDesignationRepo(db)
	cells := repository.NewCellRepo(db)
	geo := repository.NewGeoRepo(db)
	overrides := repository.NewPriceOverrideRepo(db)
	capacities := repository.NewCapacityOverrideRepo(db)
	memberships := repository.NewMembershipRepo(db)
	cards := repository.NewIDCardRepo(db)
	audits := repository.NewReassignAuditRepo(db)

	// Services.
	allocator := service.NewAllocator(memberships, designations, overrides, capacities, geo)
	issuer := service.NewCardIssuer(db, cards)
	publisher := queue.NewPublisher(users, designations, cells)
	lifecycle := service.NewLifecycle(memberships, users, designations, cells, issuer, publisher)
	reassigner := service.NewReassigner(allocator, issuer, audits)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	memberH := handler.NewMembershipHandler(allocator, memberships, designations)
	availH := handler.NewAvailabilityHandler(allocator, designations)
	payH := handler.NewPaymentHandler(lifecycle)
	reassignH := handler.NewReassignHandler(reassigner, memberships, designations, audits)
	credH := handler.NewCredentialHandler(cards, memberships, issuer)
	catH := handler.NewCatalogHandler(designations, cells, overrides, capacities, geo)
	geoH := handler.NewGeoHandler(geo)

	// Optional Redis-backed middleware.
	var cacheMW, limitMW echo.MiddlewareFunc
	if rdb != nil {
		if cacheCfg := config.LoadCacheConfig(); cacheCfg.Enabled {
			cacheMW = middleware.NewRedisCache(cacheCfg, rdb)
		}
		if rlCfg := config.LoadRateLimitConfig(); rlCfg.Enabled {
			limitMW = middleware.NewTokenBucket(rlCfg, rdb)
		}
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, geoH, catH, availH, cacheMW)
	router.RegisterPaymentWebhook(e, payH)
	router.RegisterMember(e, memberH, reassignH, credH, cfg.JWTSecret, limitMW)
	router.RegisterAdmin(e, catH, geoH, payH, credH, cfg.JWTSecret)

	// Payment results also arrive asynchronously from the broker.
	go func() {
		if err := queue.StartPaymentConsumer(lifecycle); err != nil {
			log.Printf("payment consumer stopped: %v", err)
		}
	}()

	// Background sweep flips ACTIVE memberships past expiry to EXPIRED.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.StartExpirySweeper(ctx, lifecycle, cfg.SweepInterval)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
