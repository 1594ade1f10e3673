// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides request
// data and response methods. Related handlers hang off one struct (Handler)
// that holds shared dependencies, passed in explicitly at construction.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shimizu-Technology/report-analyzer-api/internal/models"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/observability"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/services/analysis"
)

// LivenessText is the body of GET /.
const LivenessText = "Medical report analyzer API is running"

// Options carries the read-only settings handlers need.
type Options struct {
	Version        string
	Model          string
	LLMConfigured  bool
	MaxUploadBytes int64
}

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	Analysis *analysis.Service
	Metrics  *observability.Metrics
	Logger   *zap.Logger
	opts     Options
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(svc *analysis.Service, metrics *observability.Metrics, logger *zap.Logger, opts Options) *Handler {
	return &Handler{
		Analysis: svc,
		Metrics:  metrics,
		Logger:   logger,
		opts:     opts,
	}
}

// Root is the liveness probe.
// GET /
func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, LivenessText)
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:        "ok",
		Version:       h.opts.Version,
		LLMConfigured: h.opts.LLMConfigured,
		Model:         h.opts.Model,
	})
}
