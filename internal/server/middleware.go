package server

import (
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	prefixKey       = "forwarded_prefix"
)

// RequestIDMiddleware keeps an inbound X-Request-ID or assigns a new one
// and echoes it on the response. The inbound request headers are not
// modified, so proxied requests carry only what the caller sent.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// LoggingMiddleware logs each request with duration and status.
func LoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration", time.Since(start).String(),
			"ip", c.ClientIP(),
			"request_id", c.GetString(requestIDKey),
		}
		if status >= http.StatusInternalServerError {
			logger.Warn("request", args...)
			return
		}
		logger.Info("request", args...)
	}
}

// RecoveryMiddleware catches panics and returns a 500 error.
func RecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					"error", r,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"request_id", c.GetString(requestIDKey),
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, response{
					Ok:    false,
					Error: "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// ForwardedHeadersMiddleware trusts exactly one proxy hop: the right-most
// X-Forwarded-For/-Proto/-Host/-Prefix values replace the client address,
// scheme, host and mount prefix. The headers themselves are left intact.
func ForwardedHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		r := c.Request

		if ip := lastHop(r.Header.Values("X-Forwarded-For")); ip != "" && net.ParseIP(ip) != nil {
			r.RemoteAddr = net.JoinHostPort(ip, "0")
		}
		if proto := lastHop(r.Header.Values("X-Forwarded-Proto")); proto == "http" || proto == "https" {
			r.URL.Scheme = proto
		}
		if host := lastHop(r.Header.Values("X-Forwarded-Host")); host != "" {
			r.Host = host
		}
		if prefix := strings.Trim(lastHop(r.Header.Values("X-Forwarded-Prefix")), "/"); prefix != "" {
			c.Set(prefixKey, "/"+prefix)
		}
		c.Next()
	}
}

func lastHop(values []string) string {
	for i := len(values) - 1; i >= 0; i-- {
		parts := strings.Split(values[i], ",")
		for j := len(parts) - 1; j >= 0; j-- {
			if v := strings.TrimSpace(parts[j]); v != "" {
				return v
			}
		}
	}
	return ""
}
