// Package middleware contains the Gin middleware of the bootcamp API:
// correlation ids, access logging, panic recovery, metrics, authentication,
// idempotency, rate limiting, advanced query results and security headers.
//
// Middleware never writes failure responses itself. Rejections are forwarded
// with c.Error and rendered by handlers.ErrorHandler.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-bootcamp-backend/internal/apperr"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
)

// RequestID reuses the caller's X-Request-ID or generates a UUID, echoes it
// on the response and stores it on the context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// RequestIDFrom returns the correlation id set by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Recovery turns a panic into a forwarded 500. The panic value and stack go
// to the request logger. When the handler already wrote a response the
// request is only aborted.
//
// Install after handlers.ErrorHandler.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", RequestIDFrom(c)).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			_ = c.Error(apperr.Internal("Server Error").Wrap(fmt.Errorf("panic: %v", rec)))
			c.Abort()
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger attached by AccessLog, or the
// global logger when there is none.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if lg, ok := c.Value(loggerKey).(*zerolog.Logger); ok {
		return lg
	}
	l := log.Logger
	return &l
}

// truncate cuts s to n bytes plus an ellipsis. n <= 0 disables it.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
