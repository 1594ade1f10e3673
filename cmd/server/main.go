// Package main is the entry point for the Medical Report Analyzer API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Shimizu-Technology/report-analyzer-api/internal/config"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/handlers"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/middleware"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/observability"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/router"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/services/analysis"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/services/llm"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/services/pdf"
	"github.com/Shimizu-Technology/report-analyzer-api/internal/services/scratch"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("🚀 Medical Report Analyzer API starting...", zap.String("version", Version))
	logger.Info("📋 Config loaded",
		zap.String("port", cfg.Port),
		zap.String("gin_mode", cfg.GinMode),
		zap.String("model", cfg.OpenRouterModel),
		zap.Int("max_upload_mb", cfg.MaxUploadMB),
	)

	gin.SetMode(cfg.GinMode)

	// Step 2: Create Services
	dir, err := scratch.New(cfg.ScratchDir)
	if err != nil {
		logger.Fatal("❌ Failed to prepare scratch directory", zap.String("path", cfg.ScratchDir), zap.Error(err))
	}
	logger.Info("✅ Scratch directory ready", zap.String("path", dir.Path()))

	metrics := observability.NewMetrics()

	client := llm.New(llm.Options{
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.OpenRouterModel,
		BaseURL: cfg.OpenRouterBaseURL,
		Timeout: cfg.LLMTimeout(),
		Referer: fmt.Sprintf("http://localhost:%s", cfg.Port),
		Title:   "Medical Report Analyzer",
	}, logger)

	if client.IsConfigured() {
		logger.Info("✅ OpenRouter analysis enabled", zap.String("model", client.Model()))
	} else {
		logger.Warn("⚠️  OPENROUTER_API_KEY is not set (analysis requests will fail until it is)")
	}

	svc := analysis.New(dir, pdf.Extractor{}, client, metrics, logger)

	// Step 3: Rate limiting
	rl := middleware.NewRateLimiter(cfg.RateLimitPerHour)
	defer rl.Stop()
	if rl.Enabled() {
		logger.Info("✅ Rate limiting enabled", zap.Int("per_hour", cfg.RateLimitPerHour))
	}

	// Step 4: Setup HTTP Router
	h := handlers.NewHandler(svc, metrics, logger, handlers.Options{
		Version:        Version,
		Model:          client.Model(),
		LLMConfigured:  client.IsConfigured(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})
	r := router.Setup(h, rl, metrics, logger, cfg.AllowedOrigins)

	// Step 5: Start the HTTP Server
	// WriteTimeout is generous: free-tier models can take minutes to answer.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info(fmt.Sprintf("🌐 Server listening on http://localhost:%s", cfg.Port))
		logger.Info(fmt.Sprintf("📖 Health check: http://localhost:%s/api/v1/health", cfg.Port))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("❌ Server failed", zap.Error(err))
		}
	}()

	// Step 6: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("🛑 Shutting down gracefully...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("⚠️  Server forced to shutdown", zap.Error(err))
	}

	logger.Info("👋 Server stopped. Goodbye!")
}

// newLogger returns a JSON production logger in release mode and a
// human-friendly development logger otherwise.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	zc := zap.NewDevelopmentConfig()
	if cfg.GinMode == gin.ReleaseMode {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
