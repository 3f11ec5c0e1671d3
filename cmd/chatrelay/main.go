package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/swipeit/chatrelay/internal/api"
	"github.com/swipeit/chatrelay/internal/backend"
	"github.com/swipeit/chatrelay/internal/cache"
	"github.com/swipeit/chatrelay/internal/config"
	"github.com/swipeit/chatrelay/internal/events"
	"github.com/swipeit/chatrelay/internal/handlers"
	"github.com/swipeit/chatrelay/internal/session"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize profile cache: Redis when configured, in-memory otherwise
	var (
		profiles   cache.ProfileCache
		redisCache *cache.RedisCache
	)
	if cfg.RedisURL != "" {
		var err error
		redisCache, err = cache.NewRedisCache(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisCache.Close()
		profiles = redisCache
		logger.Info().Msg("connected to Redis")
	} else {
		profiles = cache.NewMemoryCache()
	}

	// Backend client and event channel
	client := backend.NewClient(cfg.BackendURL, cfg.BackendToken)
	bus := events.NewBus(32)

	// Start the reconciliation session
	sess := session.New(cfg.User(), client, bus, profiles, cfg.PollInterval, logger)
	go sess.Run(ctx)

	// Create router
	router := api.NewRouter(logger, handlers.NewHandler(sess, client, bus, profiles, redisCache))

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("backend", cfg.BackendURL).
			Msg("starting chat relay")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down relay...")

	// Stop the session loop and in-flight feeds
	cancel()

	// Graceful shutdown with 30 second timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("relay stopped")
}
