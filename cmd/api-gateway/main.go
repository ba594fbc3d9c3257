package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sysocial/sysocial-backend/internal/config"
	"github.com/sysocial/sysocial-backend/internal/database"
	"github.com/sysocial/sysocial-backend/internal/gateway"
	"github.com/sysocial/sysocial-backend/internal/handler"
	"github.com/sysocial/sysocial-backend/internal/logger"
	"github.com/sysocial/sysocial-backend/internal/middleware"
	"github.com/sysocial/sysocial-backend/internal/router"
	"github.com/sysocial/sysocial-backend/internal/server"
	"github.com/sysocial/sysocial-backend/internal/service"
	"github.com/sysocial/sysocial-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Setup Logger ──────────────────────────────────────────────────
	log := logger.Setup("api-gateway", cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.GatewayPort).
		Str("mode", cfg.GinMode).
		Msg("Starting API gateway")
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Routing Table ─────────────────────────────────────────────────
	table, err := gateway.LoadTable(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load routing table")
	}
	for _, svc := range table.Services() {
		log.Info().
			Str("service", svc.Name).
			Str("url", svc.BaseURL).
			Strs("prefixes", table.Prefixes(svc.Name)).
			Msg("Backend registered")
	}

	// ─── Rate Limiter ──────────────────────────────────────────────────
	memLimiter := middleware.NewSlidingWindowLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	go memLimiter.Run(ctx)

	var limiter middleware.Limiter = memLimiter
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, rate limits stay in memory")
	}
	if rdb != nil {
		defer rdb.Close()
		limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitRequests, cfg.RateLimitWindow, memLimiter, log)
	}

	// ─── Proxy & Health ────────────────────────────────────────────────
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	proxy := gateway.NewProxy(table, gateway.ProxyOptions{
		BreakerThreshold: cfg.BreakerThreshold,
		BreakerOpenFor:   cfg.BreakerOpenFor,
		Protect:          middleware.RequireJWT(tokens),
	}, log)

	board := gateway.NewStatusBoard(table)
	checker := gateway.NewChecker(3 * time.Second)
	healthWorker := worker.NewHealthWorker(table, board, checker, cfg.HealthCheckInterval, log)
	go healthWorker.Start(ctx)

	// ─── Handlers & Router ─────────────────────────────────────────────
	gatewayHandler := handler.NewGatewayHandler(board, proxy)
	wsHandler := handler.NewWSHandler(gatewayHandler, log, cfg.AllowedOrigins)

	r, err := router.SetupGateway(cfg, router.GatewayDeps{
		Gateway: gatewayHandler,
		WS:      wsHandler,
		Proxy:   proxy,
		Limiter: limiter,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	// Stopping the context ends the health worker and the limiter sweeper.
	server.Run(":"+cfg.GatewayPort, r, log, cancel)
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
