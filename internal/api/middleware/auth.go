// Package middleware provides HTTP middleware for the Gin router.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TechnicianIDKey is the context key holding the authenticated technician id.
const TechnicianIDKey = "technician_id"

// DeviceAuth extracts the technician identity from the Authorization header,
// format "Bearer <technician-id>". Real token verification is an external
// concern; the subsystem only needs the resolved identity.
func DeviceAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			c.Abort()
			return
		}

		c.Set(TechnicianIDKey, parts[1])
		c.Next()
	}
}

// GetTechnicianID returns the authenticated technician id set by DeviceAuth.
func GetTechnicianID(c *gin.Context) string {
	return c.GetString(TechnicianIDKey)
}

// RequestLogger logs one structured line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
