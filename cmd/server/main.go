package main // Entry point package

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-world/internal/config"
	"github.com/iliyamo/cinema-world/internal/database"
	"github.com/iliyamo/cinema-world/internal/handler"
	"github.com/iliyamo/cinema-world/internal/middleware"
	"github.com/iliyamo/cinema-world/internal/queue"
	"github.com/iliyamo/cinema-world/internal/repository"
	"github.com/iliyamo/cinema-world/internal/router"
	"github.com/iliyamo/cinema-world/internal/world"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open failed: %v", err)
	}
	defer db.Close()

	store := repository.NewWorldStore(db, cfg.PublishPresence)
	staffUsers := repository.NewStaffUserRepo(db)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	flags := world.NewFlagCache()
	manager := world.NewManager(store, flags, logger,
		world.WithClaimRetries(cfg.ClaimRetries),
	)

	ctx := context.Background()
	if err := manager.PrimeFlags(ctx); err != nil {
		log.Fatalf("priming room flags failed: %v", err)
	}

	// Feed staff open/close transitions into the session manager; a
	// closed room evicts its occupants on this instance.
	go func() {
		if err := queue.StartFlagConsumer(ctx, manager); err != nil {
			log.Printf("flag consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterWorld(e, handler.NewWorldHandler(store.Rooms, store.Seats, world.DriverConfig{
		ResyncInterval: cfg.ResyncInterval,
		DriftThreshold: cfg.DriftThreshold,
		HealthInterval: cfg.HealthInterval,
	}))

	var rateLimit echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		rateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	}
	router.RegisterStaff(e,
		handler.NewStaffAuthHandler(staffUsers, cfg.JWTSecret, cfg.AccessTTLMin),
		handler.NewStaffRoomHandler(store.Rooms),
		cfg.JWTSecret,
		rateLimit,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
