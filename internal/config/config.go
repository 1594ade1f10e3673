// Package config handles application configuration.
//
// Go Pattern: Configuration via environment variables with sensible defaults.
// The struct is built once in main and handed to every constructor that needs
// it. Nothing reads the environment after startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultOpenRouterBaseURL is the OpenAI-compatible endpoint of OpenRouter.
const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Config holds all application configuration.
// The yaml tags are used by the optional overlay file (CONFIG_PATH).
type Config struct {
	// Server settings
	Port     string `yaml:"port"`
	GinMode  string `yaml:"gin_mode"` // "debug", "release", or "test"
	LogLevel string `yaml:"log_level"`

	// OpenRouter AI settings
	OpenRouterAPIKey  string `yaml:"openrouter_api_key"`
	OpenRouterModel   string `yaml:"openrouter_model"`
	OpenRouterBaseURL string `yaml:"openrouter_base_url"`

	// LLMTimeoutSeconds overrides the HTTP client timeout for the completion
	// call. Zero keeps the client default (no timeout).
	LLMTimeoutSeconds int `yaml:"llm_timeout_seconds"`

	// Uploads
	ScratchDir  string `yaml:"scratch_dir"`   // Where uploaded PDFs live for the length of one request
	MaxUploadMB int    `yaml:"max_upload_mb"` // Request body cap for POST /analyze

	// Rate limiting (requests per hour per client IP, 0 = disabled)
	RateLimitPerHour int `yaml:"rate_limit_per_hour"`

	// CORS
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads configuration with sensible defaults.
//
// Precedence: built-in defaults, then the YAML file named by CONFIG_PATH (if
// set), then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	return &Config{
		Port:              "3000",
		GinMode:           "debug",
		LogLevel:          "info",
		OpenRouterModel:   "meta-llama/llama-3.1-8b-instruct:free",
		OpenRouterBaseURL: DefaultOpenRouterBaseURL,
		ScratchDir:        filepath.Join(os.TempDir(), "report-uploads"),
		MaxUploadMB:       20,
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:5500", // VS Code Live Server default
		},
	}
}

// mergeFile overlays values from a YAML file. Missing keys keep their
// current values.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.OpenRouterAPIKey = getEnv("OPENROUTER_API_KEY", c.OpenRouterAPIKey)
	c.OpenRouterModel = getEnv("OPENROUTER_MODEL", c.OpenRouterModel)
	c.OpenRouterBaseURL = getEnv("OPENROUTER_BASE_URL", c.OpenRouterBaseURL)
	c.LLMTimeoutSeconds = getEnvInt("LLM_TIMEOUT_SECONDS", c.LLMTimeoutSeconds)

	c.ScratchDir = getEnv("SCRATCH_DIR", c.ScratchDir)
	c.MaxUploadMB = getEnvInt("MAX_UPLOAD_MB", c.MaxUploadMB)
	c.RateLimitPerHour = getEnvInt("RATE_LIMIT_PER_HOUR", c.RateLimitPerHour)

	// CORS: in production, set this to your frontend URL(s)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
}

// Validate rejects configurations the server cannot start with.
// A missing API key is not an error here; main logs a warning instead.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid GIN_MODE %q; expected debug, release or test", c.GinMode)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	if c.RateLimitPerHour < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_HOUR must not be negative, got %d", c.RateLimitPerHour)
	}
	if c.LLMTimeoutSeconds < 0 {
		return fmt.Errorf("LLM_TIMEOUT_SECONDS must not be negative, got %d", c.LLMTimeoutSeconds)
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one CORS origin is required")
	}
	return nil
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// LLMTimeout is the completion client timeout (0 = none).
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// LLMConfigured reports whether an OpenRouter key is present.
func (c *Config) LLMConfigured() bool {
	return c.OpenRouterAPIKey != ""
}

// getEnv reads an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt reads an integer environment variable with a fallback.
func getEnvInt(key string, fallback int) int {
	str := getEnv(key, "")
	if str == "" {
		return fallback
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return fallback
	}
	return val
}

// splitList turns "a, b,,c" into ["a" "b" "c"].
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
