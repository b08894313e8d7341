package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/config"
	"github.com/UnknownOlympus/wayfarer/internal/game"
	"github.com/UnknownOlympus/wayfarer/internal/geo"
	"github.com/UnknownOlympus/wayfarer/internal/lookup"
	"github.com/UnknownOlympus/wayfarer/internal/metrics"
	"github.com/UnknownOlympus/wayfarer/internal/ratelimit"
	"github.com/UnknownOlympus/wayfarer/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Create the lookup provider using the factory pattern based on configuration.
	// This allows runtime selection between providers (Google, Nominatim).
	provider, err := lookup.NewProvider(lookup.ProviderConfig{
		Type:      lookup.ProviderType(cfg.ProviderType),
		APIKey:    cfg.APIKey,
		RateLimit: cfg.ProviderRateLimit,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create lookup provider: %v", err)
	}

	logger.InfoContext(ctx, "Lookup provider initialized", "type", cfg.ProviderType)

	// The sliding-window guard shared by all external lookup call sites.
	limiter := ratelimit.New(ratelimit.Config{
		Window:   cfg.RateWindow,
		MaxCalls: cfg.RateMaxCalls,
		Lockout:  cfg.RateLockout,
	}, nil, logger)
	defer limiter.Stop()

	// Init the round state machine.
	engine, err := game.New(game.Config{
		Box:          cfg.Box,
		City:         cfg.City,
		ViewDuration: cfg.ViewDuration,
		AdvanceDelay: cfg.AdvanceDelay,
	}, nil, limiter, provider, geo.NewSampler(nil), appMetrics, logger)
	if err != nil {
		log.Fatalf("Failed to create game engine: %v", err)
	}
	defer engine.Stop()

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.",
		"city", cfg.City, "box", cfg.Box)

	// Serve the presentation surface and monitoring endpoints.
	srv := newHTTPServer(cfg.Port, server.New(engine, logger).Handler(reg))
	go func() {
		logger.InfoContext(ctx, "Starting HTTP server", "port", cfg.Port)
		if errServe := srv.ListenAndServe(); errServe != nil && errServe != http.ErrServerClosed {
			logger.ErrorContext(ctx, "HTTP server failed", "error", errServe)
			stop()
		}
	}()

	// Kick off the first round.
	engine.Start(ctx)

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server gracefully", "error", err)
	}

	logger.Info("Application stopped gracefully.")
}

func newHTTPServer(port int, handler http.Handler) *http.Server {
	readTimeout := 5
	writeTimeout := 10
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case envLocal:
		logger = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelWarn,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelError,
			}),
		)

		logger.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return logger
}
