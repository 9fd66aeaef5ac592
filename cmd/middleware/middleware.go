// Package middleware holds the gin middleware the router installs:
// request logging, JWT authentication, scanner guard, Prometheus
// instrumentation and the scan rate limiter.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/zlog"

	"clubtix/internal/auth"
	"clubtix/internal/dto"
	"clubtix/internal/model"
	"clubtix/internal/monitoring"
)

func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		zlog.Logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		monitoring.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		monitoring.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}

// AuthMiddleware verifies the Bearer access token and attaches its claims
// to the request context.
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Response{
				Status: "error",
				Error:  &dto.Error{Code: dto.Unauthorized, Desc: "Missing access token"},
			})
			return
		}

		claims, err := tokens.ParseAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Response{
				Status: "error",
				Error:  &dto.Error{Code: dto.Unauthorized, Desc: "Invalid access token"},
			})
			return
		}

		c.Set(auth.ContextClaimsKey, claims)
		c.Next()
	}
}

// ScannerOnly rejects callers whose token is not a scanner account.
func ScannerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(auth.ContextClaimsKey)
		claims, cast := v.(*auth.Claims)
		if !ok || !cast || claims.UserType != model.UserTypeScanner {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.Response{
				Status: "error",
				Error:  &dto.Error{Code: dto.PermissionDenied, Desc: "Scanner account required"},
			})
			return
		}
		c.Next()
	}
}

// ScanRateLimit caps scan attempts per scanner with a Redis counter that
// expires after the window.
func ScanRateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(auth.ContextClaimsKey)
		claims, cast := v.(*auth.Claims)
		if !ok || !cast {
			c.Next()
			return
		}

		key := "scanrate:" + claims.Subject
		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			zlog.Logger.Warn().Err(err).Msg("rate limiter unavailable, letting request through")
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, window)
		}
		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.Response{
				Status: "error",
				Error:  &dto.Error{Code: dto.ServiceUnavailable, Desc: "Too many scan attempts, slow down"},
			})
			return
		}
		c.Next()
	}
}
