// Package main provides the Chat Engine API server entrypoint.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/astra-ai/astra/libs/chat-engine/internal/cache"
	"github.com/astra-ai/astra/libs/chat-engine/internal/chat"
	"github.com/astra-ai/astra/libs/chat-engine/internal/config"
	"github.com/astra-ai/astra/libs/chat-engine/internal/llm"
	"github.com/astra-ai/astra/libs/chat-engine/internal/observability"
	"github.com/astra-ai/astra/libs/chat-engine/internal/review"
	"github.com/astra-ai/astra/libs/chat-engine/internal/rules"
	"github.com/astra-ai/astra/libs/chat-engine/internal/storage"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "chat-engine",
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.Driver).
		Str("cache", cfg.Cache.Driver).
		Msg("Starting Chat Engine API")

	ctx := context.Background()

	// Open the vehicle store; SQLite takes over when Postgres is unreachable
	store, err := storage.Connect(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open vehicle store")
		os.Exit(1)
	}
	defer store.Close()

	// Cache client
	var cacheClient cache.Client
	if cfg.Cache.Driver == "redis" {
		redisClient, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unreachable, using in-memory cache")
			cacheClient = cache.NewMemoryClient(cfg.Cache.MaxEntries)
		} else {
			cacheClient = redisClient
		}
	} else {
		cacheClient = cache.NewMemoryClient(cfg.Cache.MaxEntries)
	}
	defer cacheClient.Close()

	repos := storage.NewRepositories(store.DB)
	vehicles := cache.NewCachedVehicles(repos.Vehicles, cacheClient, cfg.Cache.TTL, logger)

	// Generation backends; either may be absent
	var cloud, local llm.Backend
	if cfg.Cloud.APIKey != "" {
		cloud = llm.NewCloudClient(cfg.Cloud, logger)
	} else {
		logger.Warn().Msg("No cloud API key configured, cloud backend disabled")
	}
	if cfg.Local.BaseURL != "" {
		local = llm.NewLocalClient(cfg.Local, logger)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	responder := rules.NewResponder(rng)

	router := chat.NewRouter(chat.RouterDeps{
		Cloud:     cloud,
		Local:     local,
		Vehicles:  vehicles,
		Responder: responder,
		Config:    cfg.Router,
		Logger:    logger,
	})

	// Reviews prefer the cloud backend and mock when neither is configured
	reviewBackend := cloud
	if reviewBackend == nil {
		reviewBackend = local
	}
	generator := review.NewGenerator(reviewBackend, rng, logger)

	handler := NewRouter(logger, cfg, Deps{
		Router:    router,
		Cloud:     cloud,
		Local:     local,
		Vehicles:  vehicles,
		Reviews:   repos.Reviews,
		Generator: generator,
		Store:     store,
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt or error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}
