package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/logger"
	"github.com/sujalbistaa/bookit/internal/metrics"
)

const (
	requestIDHeader = "X-Request-ID"

	ctxRequestID = "request_id"
	ctxLogger    = "logger"
	ctxPrincipal = "principal"
	ctxUser      = "user"
)

// LoggingMiddleware tags every request with an id and logs its outcome.
// A client supplied X-Request-ID is kept.
func LoggingMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ctxRequestID, requestID)
		c.Header(requestIDHeader, requestID)

		reqLogger := logger.WithRequestID(log, requestID)
		c.Set(ctxLogger, reqLogger)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.Int("size", c.Writer.Size()),
			zap.String("client_ip", c.ClientIP()),
		}
		if p, ok := c.Get(ctxPrincipal); ok {
			fields = append(fields, zap.String("user_id", p.(auth.Principal).ID))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			reqLogger.Error("Request completed", fields...)
		} else {
			reqLogger.Info("Request completed", fields...)
		}
	}
}

// requestLogger returns the logger LoggingMiddleware attached, or a no-op
// logger outside of it.
func requestLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(ctxLogger); ok {
		return l.(*zap.Logger)
	}
	return zap.NewNop()
}

// MetricsMiddleware records request counts and latency by route template,
// so /api/posts/:id is one series regardless of the id.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// SecurityHeadersMiddleware adds basic security headers. The API only
// serves JSON, so the CSP forbids everything.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Next()
	}
}

// AuthMiddleware resolves the bearer token to the caller's current
// account. The role and ban state come from the store on every request,
// not from the token.
func AuthMiddleware(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			fail(c, apperr.New(apperr.ErrUnauthorized, "Not authorized"))
			return
		}

		principal, user, err := svc.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			fail(c, err)
			return
		}
		c.Set(ctxPrincipal, principal)
		c.Set(ctxUser, user)
		c.Set(ctxLogger, logger.WithUserID(requestLogger(c), principal.ID))
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller when a valid bearer token is
// sent and otherwise lets the request through anonymously.
func OptionalAuthMiddleware(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.Next()
			return
		}
		principal, user, err := svc.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			requestLogger(c).Debug("Ignoring invalid token on public route", zap.Error(err))
			c.Next()
			return
		}
		c.Set(ctxPrincipal, principal)
		c.Set(ctxUser, user)
		c.Set(ctxLogger, logger.WithUserID(requestLogger(c), principal.ID))
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireAdmin(principal(c)); err != nil {
			fail(c, err)
			return
		}
		c.Next()
	}
}

// principal is the authenticated caller, or the anonymous principal on
// public routes.
func principal(c *gin.Context) auth.Principal {
	if p, ok := c.Get(ctxPrincipal); ok {
		return p.(auth.Principal)
	}
	return auth.Principal{}
}

// RecoveryMiddleware turns a panic into the standard 500 envelope.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		requestLogger(c).Error("Panic recovered", zap.Any("panic", recovered), zap.Stack("stack"))
		abortWith(c, http.StatusInternalServerError, "Server error", nil)
	})
}
