// Package geocoder resolves free-form addresses and postal codes to
// coordinates through an external provider.
package geocoder

import (
	"context"
	"errors"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

// ErrProvider is returned when the provider answers with a failure.
var ErrProvider = errors.New("geocoder: provider error")

// Location is one geocoding match.
type Location struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formattedAddress"`
	Street           string  `json:"street"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	Zipcode          string  `json:"zipcode"`
	Country          string  `json:"country"`
}

// Point converts l into a GeoJSON point with address details.
func (l Location) Point() domain.GeoPoint {
	p := domain.NewPoint(l.Latitude, l.Longitude)
	p.FormattedAddress = l.FormattedAddress
	p.Street = l.Street
	p.City = l.City
	p.State = l.State
	p.Zipcode = l.Zipcode
	p.Country = l.Country
	return p
}

// Geocoder resolves an address into zero or more locations, best match first.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]Location, error)
}

// Func adapts a function to Geocoder.
type Func func(ctx context.Context, address string) ([]Location, error)

func (f Func) Geocode(ctx context.Context, address string) ([]Location, error) {
	return f(ctx, address)
}
