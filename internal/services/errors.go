// Package services implements the business rules for bootcamps, courses,
// photo uploads and authentication on top of the store interfaces. Request
// level failures are returned as *apperr.Error so handlers can forward them
// unchanged; store failures pass through and are mapped by apperr.From.
package services

import (
	"errors"
	"net/http"

	"github.com/tbourn/go-bootcamp-backend/internal/apperr"
	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

// Upload errors.
var (
	ErrNoFile       = apperr.BadRequest("Please upload a file")
	ErrNotImage     = apperr.BadRequest("Unsupported file type, please upload an image file")
	ErrUploadFailed = apperr.Internal("Problem uploading the image")
)

// Auth errors.
var (
	ErrMissingCredentials = apperr.BadRequest("Please provide an email and password")
	ErrInvalidCredentials = apperr.Unauthorized("Invalid credentials")
	ErrRoleNotAllowed     = apperr.BadRequest("Role must be user or publisher")
	ErrEmailTaken         = apperr.BadRequest("Duplicate field value entered")
	ErrWeakPassword       = apperr.BadRequest("Password must be at least 6 characters")
)

// Geocoding errors.
var (
	ErrNoGeocoder      = apperr.New(http.StatusServiceUnavailable, "geocoder_unavailable", "Geocoding is not configured")
	ErrAddressNotFound = apperr.BadRequest("Could not geocode the address")
	ErrInvalidDistance = apperr.BadRequest("Distance must be a positive number")
	ErrInvalidLocation = apperr.Validation([]string{"Please provide a valid GeoJSON point"})
)

func invalidID(id string) *apperr.Error {
	return apperr.NotFound("Resource not found with id of %s", id).Wrap(domain.ErrInvalidID)
}

// lookupErr turns a store miss into a 404 naming the resource and id; other
// errors pass through.
func lookupErr(kind, id string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperr.NotFound("%s not found with id of %s", kind, id).Wrap(err)
	}
	return err
}

func forbidden(actor domain.Actor, action, kind, id string) *apperr.Error {
	return apperr.Forbidden("User %s is not authorized to %s %s %s", actor.ID, action, kind, id)
}
