package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/banking_backoffice/cmd/docs"
	portssvc "github.com/SscSPs/banking_backoffice/internal/core/ports/services"
	"github.com/SscSPs/banking_backoffice/internal/middleware"
	"github.com/SscSPs/banking_backoffice/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const defaultLoginRateLimit = "5-M"

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// cache may be nil, in which case Idempotency-Key headers are ignored.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	cache *redis.Client,
) {
	registerValidators()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	loginLimiter, err := middleware.NewIPRateLimiter(cfg.LoginRateLimit)
	if err != nil {
		slog.Warn("Invalid LOGIN_RATE_LIMIT, using default", slog.String("error", err.Error()), slog.String("default", defaultLoginRateLimit))
		loginLimiter, _ = middleware.NewIPRateLimiter(defaultLoginRateLimit)
	}

	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerAuthRoutes(r, v1, services, loginLimiter)
	registerAccountRoutes(v1, services.Account)
	registerLedgerRoutes(v1, services.Ledger, middleware.Idempotency(cache, cfg.IdempotencyTTL))

	setupSwaggerRoutes(r, cfg)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
