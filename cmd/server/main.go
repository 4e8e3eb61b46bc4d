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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dharmasatrya/flightfinder/internal/config"
	"github.com/dharmasatrya/flightfinder/internal/handler"
	"github.com/dharmasatrya/flightfinder/internal/quota"
	"github.com/dharmasatrya/flightfinder/internal/ratelimit"
	"github.com/dharmasatrya/flightfinder/internal/upstream"
)

const (
	limiterIdle     = 10 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	config.SetupLogging(cfg.Log)
	if err := cfg.ValidateServer(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	limiter := ratelimit.NewClientLimiter(ratelimit.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
	})
	go pruneLimiter(ctx, limiter)

	upstreamClient, err := upstream.NewClient(upstream.Config{
		BaseURL:  cfg.Upstream.BaseURL,
		Token:    cfg.Upstream.Token,
		Currency: cfg.Upstream.Currency,
		Timeout:  cfg.Upstream.Timeout,
	})
	if err != nil {
		slog.Error("failed to create upstream client", "error", err)
		os.Exit(1)
	}

	guard := newGuard(cfg)
	defer guard.Close()

	flights := handler.NewFlightsHandler(upstreamClient, guard)

	api := e.Group("/api", ratelimit.Middleware(limiter))
	api.GET("/travelpayouts/flights", flights.Flights)
	api.GET("/flights", flights.LegacyFlights)
	e.GET("/health", handler.HealthHandler)

	go func() {
		slog.Info("starting flight proxy", "port", cfg.Server.Port, "upstream", upstreamClient.Name())
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}
	slog.Info("server stopped")
}

func newGuard(cfg config.Config) quota.Guard {
	if !cfg.Quota.Enabled {
		slog.Info("upstream quota disabled")
		return quota.NewNoOpGuard()
	}

	guard, err := quota.NewRedisGuard(quota.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Limit:    cfg.Quota.PerMinute,
		Window:   time.Minute,
	})
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.Info("upstream quota enabled", "redis", cfg.Redis.Host+":"+cfg.Redis.Port, "per_minute", cfg.Quota.PerMinute)
	return guard
}

func pruneLimiter(ctx context.Context, l *ratelimit.ClientLimiter) {
	ticker := time.NewTicker(limiterIdle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Prune(limiterIdle); n > 0 {
				slog.Debug("pruned idle client limiters", "count", n, "remaining", l.Len())
			}
		}
	}
}
