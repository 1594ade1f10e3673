// cors.go configures Cross-Origin Resource Sharing (CORS).
//
// The browser uploader is usually served from a different origin than the
// API (Live Server, a static host). Only origins on the allow-list get CORS
// headers; a request carrying any other Origin is rejected with 403.
package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns configured CORS middleware.
// A single "*" entry allows every origin (without credentials).
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Length"},
		MaxAge:        12 * time.Hour, // Cache preflight responses
	}

	if slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowCredentials = true
	}

	return cors.New(cfg)
}
