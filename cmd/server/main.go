package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/quadline/backend/internal/api"
	"github.com/quadline/backend/internal/config"
	"github.com/quadline/backend/internal/database"
	"github.com/quadline/backend/internal/game"
	"github.com/quadline/backend/internal/middleware"
	"github.com/quadline/backend/internal/migrations"
	"github.com/quadline/backend/internal/redis"
	"github.com/quadline/backend/internal/session"
	"github.com/quadline/backend/internal/summary"
	"github.com/quadline/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database (record store for players and matches)
	db, err := database.Connect(cfg.ActiveDatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if cfg.MigrateOnStart {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.ActiveDatabaseURL()); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Summary cache: Redis when available, in-process otherwise
	var cache summary.Cache
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Printf("[REDIS] Not available (%v), using in-memory summary cache", err)
		cache = summary.NewMemoryCache()
	} else {
		defer rdb.Close()
		cache = summary.NewRedisCache(rdb)
	}

	// Live-state singletons
	codes := game.NewCodePool(game.DefaultPoolSize)
	regOpts := []game.Option{
		game.WithSentinelTimeout(time.Duration(cfg.SentinelTimeoutSecs) * time.Second),
	}
	if cfg.SeedTestGame || cfg.Environment == "development" {
		regOpts = append(regOpts, game.WithTestGame())
	}
	registry := game.NewRegistry(codes, regOpts...)
	sessions := session.NewManager(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	fabric := ws.NewFabric(registry)

	// Hydrate the leaderboard before taking traffic
	hydrator := summary.NewHydrator(db, cache, summary.Knobs{
		StartingElo: cfg.StartingElo,
		KCeiling:    cfg.EloKCeiling,
		KFloor:      cfg.EloKFloor,
		KDecay:      cfg.EloKDecay,
	})
	if err := hydrator.Hydrate(context.Background()); err != nil {
		log.Printf("[SUMMARY] Initial hydration failed: %v", err)
	}

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg))

	// Initialize API handlers
	api.SetupRoutes(router, db, cfg, registry, sessions, fabric, cache, hydrator)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8000"
	}

	log.Printf("Starting Quadline server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
