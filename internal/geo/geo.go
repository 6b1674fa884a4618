// Package geo converts linear distances into the angular radius used by
// spherical containment queries and evaluates those queries in memory.
package geo

import (
	"fmt"
	"math"
	"strings"
)

// Earth radii in the supported units.
const (
	EarthRadiusMiles = 3963.0
	EarthRadiusKm    = 6378.0
)

// Unit is a distance unit.
type Unit string

const (
	Miles      Unit = "mi"
	Kilometers Unit = "km"
)

// ParseUnit accepts "", "mi", "km" and their long forms. Empty means miles.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mi", "mile", "miles":
		return Miles, nil
	case "km", "kilometer", "kilometers", "kilometre", "kilometres":
		return Kilometers, nil
	}
	return "", fmt.Errorf("unknown distance unit %q", s)
}

// EarthRadius returns the earth radius expressed in u.
func (u Unit) EarthRadius() float64 {
	if u == Kilometers {
		return EarthRadiusKm
	}
	return EarthRadiusMiles
}

// Radius converts distance (in unit u) to radians on the earth's surface.
func Radius(distance float64, u Unit) float64 {
	return distance / u.EarthRadius()
}

// Center is a query origin. Coordinates follow GeoJSON order: [lng, lat].
type Center [2]float64

// NewCenter builds a Center from latitude and longitude.
func NewCenter(lat, lng float64) Center { return Center{lng, lat} }

func (c Center) Lng() float64 { return c[0] }
func (c Center) Lat() float64 { return c[1] }

// Circle is a spherical cap: every point whose central angle to Center is at
// most Radius radians.
type Circle struct {
	Center Center
	Radius float64
}

// Contains reports whether the point (lat, lng) lies within c.
func (c Circle) Contains(lat, lng float64) bool {
	return CentralAngle(c.Center.Lat(), c.Center.Lng(), lat, lng) <= c.Radius
}

// CentralAngle returns the angle in radians between two points given in
// degrees, using the haversine formula.
func CentralAngle(lat1, lng1, lat2, lng2 float64) float64 {
	φ1, φ2 := rad(lat1), rad(lat2)
	dφ := φ2 - φ1
	dλ := rad(lng2 - lng1)
	h := math.Sin(dφ/2)*math.Sin(dφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(dλ/2)*math.Sin(dλ/2)
	return 2 * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Box is a latitude/longitude rectangle in degrees. When MinLng > MaxLng
// the box wraps across the antimeridian.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Wraps reports whether b crosses the antimeridian.
func (b Box) Wraps() bool { return b.MinLng > b.MaxLng }

// Bounds returns a box enclosing c. It is a coarse prefilter; Contains
// decides membership.
func (c Circle) Bounds() Box {
	latR := rad(c.Center.Lat())
	lngR := rad(c.Center.Lng())
	r := c.Radius

	minLat, maxLat := latR-r, latR+r
	if maxLat >= math.Pi/2 || minLat <= -math.Pi/2 || r >= math.Pi {
		// A pole is inside the cap: every longitude qualifies.
		return Box{
			MinLat: deg(math.Max(minLat, -math.Pi/2)),
			MaxLat: deg(math.Min(maxLat, math.Pi/2)),
			MinLng: -180,
			MaxLng: 180,
		}
	}

	dLng := math.Asin(math.Sin(r) / math.Cos(latR))
	minLng, maxLng := lngR-dLng, lngR+dLng
	if minLng < -math.Pi {
		minLng += 2 * math.Pi
	}
	if maxLng > math.Pi {
		maxLng -= 2 * math.Pi
	}
	return Box{MinLat: deg(minLat), MaxLat: deg(maxLat), MinLng: deg(minLng), MaxLng: deg(maxLng)}
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }
