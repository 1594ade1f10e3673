// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shimizu-Technology/report-analyzer-api/internal/handlers"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/middleware"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/observability"
)

// Setup creates and configures the Gin router with all routes.
func Setup(h *handlers.Handler, rl *middleware.RateLimiter, metrics *observability.Metrics, logger *zap.Logger, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger, metrics))
	r.Use(middleware.CORS(allowedOrigins))

	// --- Public Routes ---
	r.GET("/", h.Root)
	r.GET("/api/v1/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Browser uploader and API documentation
	r.GET("/app", h.ServeApp)
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPISpec)

	// --- Analysis (rate limited per client IP when configured) ---
	r.POST("/analyze", rl.RateLimit(), h.Analyze)

	return r
}
