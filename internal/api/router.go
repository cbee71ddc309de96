package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/multihub/multihub-api/internal/api/handler"
	"github.com/multihub/multihub-api/internal/api/middleware"
	"github.com/multihub/multihub-api/internal/core/domain"
	"github.com/multihub/multihub-api/internal/core/service"
	mongodb "github.com/multihub/multihub-api/internal/infrastructure/db/mongo"
	redisdb "github.com/multihub/multihub-api/internal/infrastructure/db/redis"
	"github.com/multihub/multihub-api/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddleware("multihub"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	codec := service.NewTokenService(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	limiter := redisdb.NewLoginLimiter(rdb)
	authService := service.NewAuthService(userRepo, codec, limiter, log)
	authHandler := handler.NewAuthHandler(authService, cfg.Production(), cfg.Auth.RefreshTTL)

	authRequired := middleware.Auth(codec)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/register", authHandler.Register, authRequired, adminOnly)
	auth.POST("/logout", authHandler.Logout, authRequired)
	auth.POST("/change-password", authHandler.ChangePassword, authRequired)
	auth.POST("/reset-password/:userId", authHandler.ResetPassword, authRequired, adminOnly)
	auth.GET("/me", authHandler.Me, authRequired)
	auth.GET("/users", authHandler.ListUsers, authRequired, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
