package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/headcookai/headcook/internal/api"
	"github.com/headcookai/headcook/internal/metrics"
	"github.com/headcookai/headcook/internal/middleware"
)

// Dependencies holds everything the routes are wired to. AuthHandler and
// RateLimiter are optional.
type Dependencies struct {
	Verifier       middleware.TokenVerifier
	Searcher       api.Searcher
	Images         api.ImageGenerator
	AuthHandler    *api.AuthHandler
	RateLimiter    *middleware.RateLimiter
	Health         *api.HealthHandler
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	Logger         *zap.Logger
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(deps.Metrics.Middleware())

	// Public routes
	if deps.Health != nil {
		router.GET("/health", deps.Health.HealthCheck)
	}
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(&router.RouterGroup)
	}

	// Protected routes
	protected := router.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Verifier, deps.Logger))
	if deps.RateLimiter != nil {
		protected.Use(deps.RateLimiter.RateLimitMiddleware())
	}
	{
		api.NewSearchHandler(deps.Searcher, deps.Logger).RegisterRoutes(protected)
		api.NewImageHandler(deps.Images, deps.Logger).RegisterRoutes(protected)
		api.NewUsageHandler(deps.Searcher, deps.Logger).RegisterRoutes(protected)
	}

	return router
}
