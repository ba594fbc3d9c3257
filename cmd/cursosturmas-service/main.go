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
	log := logger.Setup("cursosturmas-service", cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.CoursePort).
		Str("mode", cfg.GinMode).
		Msg("Starting cursos/turmas service")
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
	courseRepo := repository.NewCourseRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)

	courseService := service.NewCourseService(courseRepo, classRepo)
	classService := service.NewClassService(classRepo)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo)

	r, err := router.SetupCourseService(cfg,
		handler.NewHealthHandler("cursosturmas-service", pool),
		handler.NewCourseHandler(courseService),
		handler.NewClassHandler(classService),
		handler.NewEnrollmentHandler(enrollmentService),
		log,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	server.Run(":"+cfg.CoursePort, r, log, nil)
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
