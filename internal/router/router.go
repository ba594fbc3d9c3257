package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sysocial/sysocial-backend/internal/config"
	"github.com/sysocial/sysocial-backend/internal/gateway"
	"github.com/sysocial/sysocial-backend/internal/handler"
	"github.com/sysocial/sysocial-backend/internal/logger"
	"github.com/sysocial/sysocial-backend/internal/middleware"
	"github.com/sysocial/sysocial-backend/internal/response"
)

// newEngine returns a gin engine with the middleware every binary shares.
// The request ID middleware runs first so even panics and 404s carry it.
func newEngine(cfg *config.Config, log zerolog.Logger) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	router.Use(response.RequestIDMiddleware())
	router.Use(logger.Middleware(log))
	router.Use(gin.Recovery())

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})
	return router, nil
}

// GatewayDeps groups what the gateway router needs.
type GatewayDeps struct {
	Gateway *handler.GatewayHandler
	WS      *handler.WSHandler
	Proxy   *gateway.Proxy
	Limiter middleware.Limiter
}

// SetupGateway configures the ingress: CORS, preflight and rate limiting in
// front of the gateway's own endpoints and the catch-all proxy.
func SetupGateway(cfg *config.Config, deps GatewayDeps, log zerolog.Logger) (*gin.Engine, error) {
	router, err := newEngine(cfg, log)
	if err != nil {
		return nil, err
	}

	// ─── Cross-cutting ─────────────────────────────────────────────────
	// Preflights are answered before the limiter so they are not counted.
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.Preflight(cfg.AllowedOrigins))
	router.Use(middleware.RateLimit(deps.Limiter, log))

	// ─── Gateway endpoints ─────────────────────────────────────────────
	router.GET("/health", deps.Gateway.Health)
	router.GET("/services", deps.Gateway.Services)
	router.GET("/services/stream", deps.WS.StatusStream)

	// ─── Everything else is resolved by the routing table ──────────────
	router.NoRoute(deps.Proxy.Handle)

	return router, nil
}

// SetupAuthService configures the auth service routes.
func SetupAuthService(cfg *config.Config, health *handler.HealthHandler, auth *handler.AuthHandler, log zerolog.Logger) (*gin.Engine, error) {
	router, err := newEngine(cfg, log)
	if err != nil {
		return nil, err
	}

	router.GET("/health", health.Health)

	authGroup := router.Group("/api/v1/auth")
	{
		authGroup.GET("/health", health.Health)
		authGroup.POST("/register", auth.Register)
		authGroup.POST("/login", auth.Login)
		authGroup.GET("/validate", auth.Validate)
	}

	return router, nil
}

// SetupUserService configures the user service routes.
func SetupUserService(cfg *config.Config, health *handler.HealthHandler, users *handler.UserHandler, log zerolog.Logger) (*gin.Engine, error) {
	router, err := newEngine(cfg, log)
	if err != nil {
		return nil, err
	}

	router.GET("/health", health.Health)

	userGroup := router.Group("/api/v1/users")
	{
		userGroup.GET("/health", health.Health)
		userGroup.POST("", users.CreateUser)
		userGroup.GET("", users.ListUsers)
		userGroup.GET("/:id", users.GetUser)
		userGroup.PUT("/:id", users.UpdateUser)
		userGroup.DELETE("/:id", users.DeleteUser)
	}

	return router, nil
}

// SetupCourseService configures the cursos, turmas and matrículas routes.
func SetupCourseService(cfg *config.Config, health *handler.HealthHandler, courses *handler.CourseHandler, classes *handler.ClassHandler, enrollments *handler.EnrollmentHandler, log zerolog.Logger) (*gin.Engine, error) {
	router, err := newEngine(cfg, log)
	if err != nil {
		return nil, err
	}

	router.GET("/health", health.Health)

	courseGroup := router.Group("/api/v1/cursos")
	{
		courseGroup.POST("", courses.CreateCourse)
		courseGroup.GET("", courses.ListCourses)
		courseGroup.GET("/disponiveis", courses.ListAvailableCourses)
		courseGroup.GET("/:id", courses.GetCourse)
		courseGroup.GET("/:id/turmas", courses.GetCourseClasses)
		courseGroup.PUT("/:id", courses.UpdateCourse)
		courseGroup.DELETE("/:id", courses.DeleteCourse)
	}

	classGroup := router.Group("/api/v1/turmas")
	{
		classGroup.POST("", classes.CreateClass)
		classGroup.GET("", classes.ListClasses)
		classGroup.GET("/:id", classes.GetClass)
		classGroup.PUT("/:id", classes.UpdateClass)
		classGroup.DELETE("/:id", classes.DeleteClass)
	}

	enrollmentGroup := router.Group("/api/v1/matriculas")
	{
		enrollmentGroup.POST("", enrollments.CreateEnrollment)
		enrollmentGroup.GET("", enrollments.ListEnrollments)
		enrollmentGroup.GET("/:id", enrollments.GetEnrollment)
		enrollmentGroup.DELETE("/:id", enrollments.CancelEnrollment)
	}

	return router, nil
}
