package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/musicstore/storefront/internal/config"
)

// SecurityHeaders adds security headers to responses. Cart and order payloads
// are per-user, so nothing under the API may be cached by intermediaries.
func SecurityHeaders(cfg *config.Config) gin.HandlerFunc {
	production := cfg.IsProduction()

	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Cache-Control", "no-store")
		c.Header("Server", "Music Storefront API")

		if production {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
