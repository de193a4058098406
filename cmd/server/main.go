// Package main is the entrypoint for the Moonsight API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moonsightlabs/moonsight/internal/analysis"
	"github.com/moonsightlabs/moonsight/internal/api"
	"github.com/moonsightlabs/moonsight/internal/api/handler"
	mw "github.com/moonsightlabs/moonsight/internal/api/middleware"
	"github.com/moonsightlabs/moonsight/internal/cache"
	"github.com/moonsightlabs/moonsight/internal/config"
	"github.com/moonsightlabs/moonsight/internal/store"
	"github.com/moonsightlabs/moonsight/internal/vision"
	"github.com/moonsightlabs/moonsight/pkg/models"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "vision_backend", cfg.Vision.Backend, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to MongoDB
	client, err := store.Connect(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	slog.Info("mongodb connected")

	mongoStore := store.NewMongoStore(client, cfg.Mongo)
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	// 3. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 4. Create vision model. Failure leaves the service degraded rather
	// than down: /health reports it and /analyze returns 500.
	var model models.VisionModel
	if m, err := vision.NewModel(cfg.Vision); err != nil {
		slog.Error("vision model unavailable, serving degraded", "error", err)
	} else {
		model = m
		slog.Info("vision model initialized", "backend", model.Name(), "device", model.Device().Device)
	}

	// 5. Create analysis service
	svc := analysis.NewService(model, mongoStore, redisCache)

	// 6. Build router with dependencies
	// Startup succeeded past the Mongo connect, so the store flag is set
	// here once; /health reads the snapshot without touching the store.
	ready := handler.Readiness{ModelLoaded: model != nil, StoreConnected: true}
	if model != nil {
		ready.Device = model.Device()
	}

	deps := api.Dependencies{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMin),

		AnalyzeHandler: handler.NewAnalyzeHandler(svc, cfg.Server.MaxUploadBytes),
		HistoryHandler: handler.NewHistoryHandler(svc),
		HealthHandler:  handler.NewHealthHandler(ready),
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
		// No WriteTimeout: inference has no enforced deadline and can
		// legitimately outlast any fixed response timeout.
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
