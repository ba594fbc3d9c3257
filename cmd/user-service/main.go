package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sysocial/sysocial-backend/internal/config"
	"github.com/sysocial/sysocial-backend/internal/database"
	"github.com/sysocial/sysocial-backend/internal/handler"
	"github.com/sysocial/sysocial-backend/internal/logger"
	"github.com/sysocial/sysocial-backend/internal/repository"
	"github.com/sysocial/sysocial-backend/internal/router"
	"github.com/sysocial/sysocial-backend/internal/server"
	"github.com/sysocial/sysocial-backend/internal/service"
	"github.com/sysocial/sysocial-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Setup Logger ──────────────────────────────────────────────────
	log := logger.Setup("user-service", cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.UserServicePort).
		Str("mode", cfg.GinMode).
		Msg("Starting user service")
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	validator.Setup()

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Wire Dependencies ─────────────────────────────────────────────
	userService := service.NewUserService(repository.NewUserRepository(pool), cfg.BcryptCost)

	r, err := router.SetupUserService(cfg,
		handler.NewHealthHandler("user-service", pool),
		handler.NewUserHandler(userService),
		log,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	server.Run(":"+cfg.UserServicePort, r, log, nil)
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
