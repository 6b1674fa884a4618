// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response envelopes shared by all endpoints. Every
// success is wrapped as
//
//	{ "success": true, "count": 2, "pagination": {...}, "data": [...] }
//
// where count and pagination appear only on listings, and every failure as
//
//	HTTP/1.1 404 Not Found
//	{
//	  "success": false,
//	  "error": "Bootcamp not found with id of 0f8f...",
//	  "code": "not_found",
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000"
//	}
//
// Handlers never write error bodies themselves; they return errors that the
// ErrorHandler middleware renders (see errors.go).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

// Envelope wraps every successful response.
type Envelope struct {
	Success bool `json:"success" example:"true"`
	// Count is the number of items in Data (listings only).
	Count *int `json:"count,omitempty" example:"2"`
	// Pagination links the neighbouring pages (advanced results only).
	Pagination *domain.Pagination `json:"pagination,omitempty"`
	Data       any                `json:"data"`
}

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	// Human-readable message (safe to show to users)
	Error string `json:"error" example:"Bootcamp not found with id of 0f8fad5b-d9cb-469f-a165-70867728950e"`
	// Stable, machine-readable code (see apperr)
	Code string `json:"code" example:"not_found"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	Success bool   `json:"success" example:"true"`
	Token   string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// empty renders as {} for responses without data (delete, logout).
type empty struct{}

// ok writes a success envelope.
func ok(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// okList writes a success envelope with the item count.
func okList(c *gin.Context, data any, count int, p *domain.Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Count: &count, Pagination: p, Data: data})
}
