package middleware

import (
	"net/http"

	"github.com/destocard/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimitConfig caps request bodies. RouteLimits overrides MaxBytes for
// matched route patterns such as the media upload endpoint.
type BodyLimitConfig struct {
	MaxBytes    int64
	RouteLimits map[string]int64
}

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return BodyLimitWithConfig(BodyLimitConfig{MaxBytes: maxBytes})
}

// BodyLimitWithConfig returns a body limit middleware with per-route overrides
func BodyLimitWithConfig(cfg BodyLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := cfg.MaxBytes
		if override, ok := cfg.RouteLimits[c.FullPath()]; ok {
			limit = override
		}
		if limit <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			AbortWithError(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge,
				"La requête dépasse la taille maximale autorisée")
			return
		}

		// Streaming bodies without Content-Length are cut at the limit
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
