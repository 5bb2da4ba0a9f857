package handlers

import (
	"net"
	"net/http"
	"strings"
	"time"

	"DR-SIGN/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const OrganizationHeader = services.OrganizationHeader

// AccessLog logs one line per request.
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= 500 {
			logger.Warn("HTTP request", fields...)
			return
		}
		logger.Info("HTTP request", fields...)
	}
}

// RequireOrganization rejects staff requests without an organization scope.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader(OrganizationHeader)) == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing " + OrganizationHeader + " header"})
			return
		}
		c.Next()
	}
}

// signerIP is the first X-Forwarded-For entry, else the socket peer address,
// else "unknown".
func signerIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	remote := c.Request.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return host
	}
	if remote != "" {
		return remote
	}
	return "unknown"
}
