package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	pphttp "github.com/bloxkit/passproxy/internal/adapter/http"
	"github.com/bloxkit/passproxy/internal/adapter/memory"
	"github.com/bloxkit/passproxy/internal/adapter/otel"
	"github.com/bloxkit/passproxy/internal/adapter/ristretto"
	"github.com/bloxkit/passproxy/internal/adapter/roblox"
	"github.com/bloxkit/passproxy/internal/config"
	"github.com/bloxkit/passproxy/internal/logger"
	"github.com/bloxkit/passproxy/internal/middleware"
	"github.com/bloxkit/passproxy/internal/port/cache"
	"github.com/bloxkit/passproxy/internal/resilience"
	"github.com/bloxkit/passproxy/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"cache_backend", cfg.Cache.Backend,
		"cache_ttl", cfg.Cache.TTL,
		"auth_enabled", cfg.Auth.APIKey != "",
	)

	shutdownTracer := otel.InitTracer(cfg.Logging.Service)
	defer func() { _ = shutdownTracer(context.Background()) }()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	store, closeStore, err := newCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer closeStore()

	client := roblox.NewClient(cfg.Upstream.ApisURL, cfg.Upstream.GamesURL, cfg.Upstream.Timeout)
	if cfg.Breaker.MaxFailures > 0 {
		client.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
	}

	passSvc := service.NewPassService(client, store, cfg.Cache.TTL, metrics)
	handlers := &pphttp.Handlers{Passes: passSvc}

	r := chi.NewRouter()
	r.Use(pphttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(pphttp.Logger)
	r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	pphttp.MountRoutes(r, handlers, cfg.Auth.APIKey)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// newCache builds the configured cache backend and its cleanup func.
func newCache(cfg config.Cache) (cache.Cache, func(), error) {
	switch cfg.Backend {
	case "ristretto":
		c, err := ristretto.New(cfg.MaxSizeMB << 20)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		return memory.New(), func() {}, nil
	}
}
