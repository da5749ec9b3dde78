package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"seatmap/internal/shared/config"
	"seatmap/internal/shared/utils/response"
	"seatmap/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	AdminKeyHeader  = "X-Admin-Key"
)

// RequestID reuses the caller's request id or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs every request once it has been served
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		if len(c.Errors) > 0 {
			log.LogHTTPError(c, c.Errors.Last(), c.Writer.Status())
			return
		}
		log.LogHTTPRequest(c, duration)
	}
}

// RequireAdmin guards administrative endpoints with the ADMIN_API_KEY
func RequireAdmin() gin.HandlerFunc {
	return RequireAdminKey(config.Load().Admin.APIKey)
}

// RequireAdminKey rejects requests whose X-Admin-Key does not match key.
// An empty key leaves the endpoints open, for local development.
func RequireAdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}

		given := c.GetHeader(AdminKeyHeader)
		if given == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Admin key is required", nil, nil)
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
