package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/generals-server/core/internal/api"
	"github.com/generals-server/core/internal/auth"
	"github.com/generals-server/core/internal/config"
	"github.com/generals-server/core/internal/logging"
	"github.com/generals-server/core/internal/observability"
	"github.com/generals-server/core/internal/redisbus"
	"github.com/generals-server/core/internal/router"
	"github.com/generals-server/core/internal/scheduler"
	"github.com/generals-server/core/internal/telemetrybus"
	"github.com/generals-server/core/internal/userstore"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize OpenTelemetry
	otelCleanup, err := observability.InitOpenTelemetry("generals-server", "1.0.0", cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := otelCleanup(context.Background()); err != nil {
			log.Printf("Error shutting down OpenTelemetry: %v", err)
		}
	}()

	// Initialize structured logger
	logger := logging.NewLogger(cfg.LogLevel)
	ctx := context.Background()

	// Initialize the external user store. Registration is the only consumer,
	// so a deployment without Postgres still serves games.
	var database *userstore.Database
	if cfg.DatabaseURL != "" {
		database, err = userstore.New(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize user store: %v", err)
		}
	} else {
		logger.Warn(ctx, "DATABASE_URL not set; user registration disabled")
	}

	// Initialize cache (Redis) for rate limiting and the telemetry stream.
	var cache *redisbus.Cache
	if cfg.RedisURL != "" {
		cache, err = redisbus.New(cfg.RedisURL)
		if err != nil {
			logger.Warn(ctx, "Redis unavailable, continuing without rate limiting/telemetry: %v", err)
			cache = nil
		}
	}
	bus := telemetrybus.New(cache)

	// Initialize JWT manager for the optional session credential.
	var jwtMgr *auth.JWTManager
	if cfg.JWTRSAPrivateKey != "" && cfg.JWTRSAPublicKey != "" {
		jwtMgr, err = auth.NewJWTManager(cfg.JWTRSAPrivateKey, cfg.JWTRSAPublicKey)
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize JWT manager: %v", err)
		}
	}

	// Initialize the game core: the serial router plus its turn scheduler.
	core := router.New(router.Options{
		GraceWindow:  time.Duration(cfg.DisconnectGraceSeconds) * time.Second,
		KickLockout:  time.Duration(cfg.KickLockoutMinutes) * time.Minute,
		EmptyRoomTTL: time.Duration(cfg.RoomEmptyTTLMinutes) * time.Minute,
		Logger:       logger,
		Bus:          bus,
	})
	turnClock := scheduler.New(core.AdvanceTurn)
	core.SetScheduler(turnClock)

	routerCtx, cancelRouter := context.WithCancel(ctx)
	go core.Run(routerCtx)

	// Setup HTTP router
	handler := api.NewRouter(core, database, cache, jwtMgr, cfg, logger)

	// Create HTTP server. No WriteTimeout: the websocket endpoint holds
	// its connection open indefinitely.
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "Server error: %v", err)
		}
	}()

	// Graceful shutdown setup
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Block until a signal is received
	<-sigChan

	gracefulShutdown(ctx, logger, server, turnClock, core, cancelRouter, database, cache, otelCleanup)

	logger.Info(ctx, "Application stopped.")
}

// gracefulShutdown handles the graceful shutdown of all components
func gracefulShutdown(ctx context.Context, logger *logging.Logger, server *http.Server, turnClock *scheduler.Scheduler, core *router.Router, cancelRouter context.CancelFunc, database *userstore.Database, cache *redisbus.Cache, otelCleanup func(context.Context) error) {
	logger.Info(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// 1. Shut down HTTP server (closes websocket listeners)
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown error: %v", err)
	} else {
		logger.Info(ctx, "HTTP server stopped.")
	}

	// 2. Stop the turn scheduler so no more ticks are produced
	turnClock.StopAll()
	logger.Info(ctx, "Turn scheduler stopped.")

	// 3. Stop the game core's serial loop
	core.Stop()
	cancelRouter()
	logger.Info(ctx, "Game core stopped.")

	// 4. Close user store connection
	if database != nil {
		if err := database.Close(); err != nil {
			logger.Error(ctx, "User store close error: %v", err)
		} else {
			logger.Info(ctx, "User store connection closed.")
		}
	}

	// 5. Close Redis cache connection
	if cache != nil {
		if err := cache.Close(); err != nil {
			logger.Error(ctx, "Redis cache close error: %v", err)
		} else {
			logger.Info(ctx, "Redis cache connection closed.")
		}
	}

	// 6. Shutdown OpenTelemetry
	if otelCleanup != nil {
		if err := otelCleanup(shutdownCtx); err != nil {
			logger.Error(ctx, "OpenTelemetry shutdown error: %v", err)
		} else {
			logger.Info(ctx, "OpenTelemetry shut down.")
		}
	}

	logger.Info(ctx, "Graceful shutdown complete.")
}
