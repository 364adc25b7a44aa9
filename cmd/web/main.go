// Package main is the entry point for the route board web server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/guzmanes/routeboard/internal/app"
	"github.com/guzmanes/routeboard/internal/cache"
	"github.com/guzmanes/routeboard/internal/config"
	"github.com/guzmanes/routeboard/internal/gateway"
	"github.com/guzmanes/routeboard/internal/handler"
	"github.com/guzmanes/routeboard/internal/middleware"
)

// maxFormBody caps incoming form posts; the largest legitimate request is a
// route form, which is well under a kilobyte.
const maxFormBody = 64 << 10

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog with a JSON handler writes machine-readable output suitable
	// for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Local cache ------------------------------------------------------
	// The cache only serves reads when the backend is unreachable; file
	// storage is the default, Redis opted into by REDIS_ADDR.
	var store cache.Store
	if cfg.RedisAddr != "" {
		store = cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
		logger.Info("cache backend", "kind", "redis", "addr", cfg.RedisAddr)
	} else {
		fs, err := cache.NewFileStore(cfg.CacheDir)
		if err != nil {
			slog.Error("failed to open cache directory", "error", err)
			os.Exit(1)
		}
		store = fs
		logger.Info("cache backend", "kind", "file", "dir", cfg.CacheDir)
	}

	// --- Gateway and controller -------------------------------------------
	gw := gateway.New(cfg.BackendURL, &http.Client{Timeout: cfg.GatewayTimeout}, cfg.ListRetries, logger)
	board := app.New(gw, store, logger)

	// Warm the snapshot before accepting traffic. A failure is not fatal:
	// the first page view retries and the cache fallback covers the gap.
	if err := board.Load(context.Background()); err != nil {
		logger.Warn("initial route load failed", "error", err)
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger →
	// Recoverer → CORS → body size cap.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxFormBody))

	srv := handler.NewServer(board, cfg.AdminSecret, logger)
	srv.Routes(r)

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "backend", cfg.BackendURL)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
