// Package apperr defines the error taxonomy surfaced by the HTTP API. Each
// Error carries the status code and the user-facing message; From maps any
// error raised by services or stores onto that taxonomy.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/geocoder"
)

// Stable, machine-readable codes.
const (
	CodeBadRequest       = "bad_request"
	CodeValidation       = "validation_error"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeConflict         = "conflict"
	CodeRateLimited      = "too_many_requests"
	CodeTimeout          = "timeout"
	CodeGeocoder         = "geocoder_error"
	CodeInternal         = "internal_error"
)

// Error is an API error with an HTTP status.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status of e.
func (e *Error) StatusCode() int { return e.Status }

// Wrap returns a copy of e with cause attached.
func (e *Error) Wrap(cause error) *Error {
	out := *e
	out.Err = cause
	return &out
}

// New builds an Error.
func New(status int, code, msg string) *Error {
	return &Error{Status: status, Code: code, Message: msg}
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Sprintf(format, args...))
}

func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeBadRequest, fmt.Sprintf(format, args...))
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) *Error {
	return New(http.StatusForbidden, CodeForbidden, fmt.Sprintf(format, args...))
}

func Internal(format string, args ...any) *Error {
	return New(http.StatusInternalServerError, CodeInternal, fmt.Sprintf(format, args...))
}

// Validation joins field messages into one 400 error.
func Validation(msgs []string) *Error {
	return New(http.StatusBadRequest, CodeValidation, strings.Join(msgs, ", "))
}

// From maps err onto the API taxonomy. Unknown errors become a 500 whose
// message does not leak internals.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &ve):
		return Validation(domain.ValidationMessages(ve)).Wrap(err)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidID):
		return NotFound("Resource not found").Wrap(err)
	case errors.Is(err, domain.ErrDuplicate):
		return BadRequest("Duplicate field value entered").Wrap(err)
	case errors.Is(err, domain.ErrInvalidQuery):
		return BadRequest("%s", err.Error()).Wrap(err)
	case errors.Is(err, geocoder.ErrProvider):
		return New(http.StatusBadGateway, CodeGeocoder, "Geocoding service failed").Wrap(err)
	case errors.Is(err, context.DeadlineExceeded):
		return New(http.StatusGatewayTimeout, CodeTimeout, "Request timed out").Wrap(err)
	case errors.Is(err, context.Canceled):
		// Client went away; status is only seen in logs.
		return New(499, CodeTimeout, "Request canceled").Wrap(err)
	}
	return Internal("Server Error").Wrap(err)
}
