// Package handlers: error propagation.
//
// Wrap is the error wrapper: handlers return an error instead of writing a
// failure response, and Wrap forwards it through c.Error. ErrorHandler is the
// single formatter that turns the forwarded error into the error envelope.
// Not-found branches, validation failures, panics (via middleware.Recovery)
// and middleware rejections all take this path, so every failure is
// rendered exactly once.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bootcamp-backend/internal/apperr"
	"github.com/tbourn/go-bootcamp-backend/internal/http/middleware"
)

// HandlerFunc is a Gin handler that reports failure by returning an error.
type HandlerFunc func(c *gin.Context) error

// Wrap adapts fn to gin.HandlerFunc. A non-nil error is forwarded and the
// chain is aborted.
func Wrap(fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fn(c); err != nil {
			_ = c.Error(err)
			c.Abort()
		}
	}
}

// ErrorHandler renders the last forwarded error, if any, once the chain
// returns. Nothing is written when the handler already responded. 5xx errors
// are logged with the underlying cause; clients only see the safe message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		cause := c.Errors.Last().Err
		e := apperr.From(cause)

		if e.Status >= http.StatusInternalServerError {
			middleware.LoggerFrom(c).Error().
				Err(cause).
				Int("status", e.Status).
				Str("code", e.Code).
				Msg("api error")
		}

		c.JSON(e.Status, ErrorResponse{
			Success:   false,
			Error:     e.Message,
			Code:      e.Code,
			RequestID: middleware.RequestIDFrom(c),
		})
	}
}

// NotFound answers unmatched routes.
func NotFound(c *gin.Context) error {
	return apperr.NotFound("Route %s not found", c.Request.URL.Path)
}

// MethodNotAllowed answers known routes hit with an unsupported method.
func MethodNotAllowed(c *gin.Context) error {
	return apperr.New(http.StatusMethodNotAllowed, apperr.CodeMethodNotAllowed, "Method not allowed")
}
