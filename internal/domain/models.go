// Package domain defines the persistence models for bootcamps, courses, and
// users. The structs are mapped with GORM for the SQLite store; the Mongo
// store converts them to its own documents.
package domain

import (
	"time"
)

// DefaultPhoto is stored on bootcamps that never had a photo uploaded.
const DefaultPhoto = "no-photo.jpg"

// Careers accepted on a bootcamp.
var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

// GeoPoint is a GeoJSON point plus the address details returned by the
// geocoder. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type             string    `json:"type,omitempty"             gorm:"type:varchar(16)"`
	Coordinates      []float64 `json:"coordinates,omitempty"      gorm:"serializer:json"`
	FormattedAddress string    `json:"formattedAddress,omitempty" gorm:"type:varchar(255)"`
	Street           string    `json:"street,omitempty"           gorm:"type:varchar(255)"`
	City             string    `json:"city,omitempty"             gorm:"type:varchar(128)"`
	State            string    `json:"state,omitempty"            gorm:"type:varchar(64)"`
	Zipcode          string    `json:"zipcode,omitempty"          gorm:"type:varchar(32)"`
	Country          string    `json:"country,omitempty"          gorm:"type:varchar(64)"`
}

// NewPoint builds a GeoJSON point from a latitude/longitude pair.
func NewPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Valid reports whether p carries a usable [lng, lat] pair.
func (p GeoPoint) Valid() bool {
	if len(p.Coordinates) != 2 {
		return false
	}
	lng, lat := p.Coordinates[0], p.Coordinates[1]
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

// IsPoint reports whether p is a GeoJSON point: type empty or "Point" and
// valid coordinates.
func (p GeoPoint) IsPoint() bool {
	return (p.Type == "" || p.Type == "Point") && p.Valid()
}

// LatLng returns the latitude and longitude of p. ok is false when p has no
// valid coordinates.
func (p GeoPoint) LatLng() (lat, lng float64, ok bool) {
	if !p.Valid() {
		return 0, 0, false
	}
	return p.Coordinates[1], p.Coordinates[0], true
}

// Bootcamp is a training program with a geocoded location.
//
// Lat/Lng mirror Location.Coordinates in plain columns so the SQLite store can
// prefilter radius queries with a bounding box. Call SyncGeoColumns before
// writing.
type Bootcamp struct {
	ID            string    `json:"id"                      gorm:"type:char(36);primaryKey"`
	Name          string    `json:"name"                    gorm:"type:varchar(50);not null;uniqueIndex" validate:"required,max=50"`
	Slug          string    `json:"slug"                    gorm:"type:varchar(64);index"`
	Description   string    `json:"description"             gorm:"type:varchar(500);not null" validate:"required,max=500"`
	Website       string    `json:"website,omitempty"       gorm:"type:varchar(255)" validate:"omitempty,httpurl"`
	Phone         string    `json:"phone,omitempty"         gorm:"type:varchar(20)" validate:"omitempty,max=20"`
	Email         string    `json:"email,omitempty"         gorm:"type:varchar(255)" validate:"omitempty,email"`
	Address       string    `json:"address"                 gorm:"type:varchar(255);not null" validate:"required"`
	Location      GeoPoint  `json:"location"                gorm:"embedded;embeddedPrefix:location_"`
	Careers       []string  `json:"careers"                 gorm:"serializer:json" validate:"required,min=1,dive,oneof='Web Development' 'Mobile Development' 'UI/UX' 'Data Science' 'Business' 'Other'"`
	AverageRating *float64  `json:"averageRating,omitempty" validate:"omitempty,min=1,max=10"`
	AverageCost   *float64  `json:"averageCost,omitempty"   validate:"omitempty,min=0"`
	Photo         string    `json:"photo"                   gorm:"type:varchar(255);not null;default:'no-photo.jpg'"`
	Housing       bool      `json:"housing"`
	JobAssistance bool      `json:"jobAssistance"`
	JobGuarantee  bool      `json:"jobGuarantee"`
	AcceptGi      bool      `json:"acceptGi"`
	UserID        string    `json:"user,omitempty"          gorm:"type:char(36);index"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Lat *float64 `json:"-" gorm:"index:idx_bootcamp_latlng,priority:1"`
	Lng *float64 `json:"-" gorm:"index:idx_bootcamp_latlng,priority:2"`
}

// TableName returns the database table name for Bootcamp.
func (Bootcamp) TableName() string { return "bootcamps" }

// SyncGeoColumns copies Location into the Lat/Lng columns.
func (b *Bootcamp) SyncGeoColumns() {
	lat, lng, ok := b.Location.LatLng()
	if !ok {
		b.Lat, b.Lng = nil, nil
		return
	}
	b.Lat, b.Lng = &lat, &lng
}

// Skill levels accepted on a course.
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// Course belongs to a bootcamp. Courses are removed with their bootcamp.
type Course struct {
	ID                   string    `json:"id"                   gorm:"type:char(36);primaryKey"`
	Title                string    `json:"title"                gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Description          string    `json:"description"          gorm:"type:text;not null" validate:"required"`
	Weeks                int       `json:"weeks"                gorm:"not null" validate:"required,gt=0"`
	Tuition              float64   `json:"tuition"              gorm:"not null" validate:"gte=0"`
	MinimumSkill         string    `json:"minimumSkill"         gorm:"type:varchar(16);not null" validate:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool      `json:"scholarshipAvailable"`
	BootcampID           string    `json:"bootcamp"             gorm:"type:char(36);not null;index"`
	UserID               string    `json:"user,omitempty"       gorm:"type:char(36);index"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`

	// Bootcamp is the owning row. Deleting it cascades to its courses.
	Bootcamp *Bootcamp `json:"-" gorm:"foreignKey:BootcampID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Course.
func (Course) TableName() string { return "courses" }

// Roles a user can hold. Admin cannot be self-registered.
const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

// User is an account that can authenticate against the API. Password holds
// the bcrypt hash and is never serialized.
type User struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"      gorm:"type:varchar(255);not null" validate:"required"`
	Email     string    `json:"email"     gorm:"type:varchar(255);not null;uniqueIndex" validate:"required,email"`
	Role      string    `json:"role"      gorm:"type:varchar(16);not null;default:'user'" validate:"required,oneof=user publisher admin"`
	Password  string    `json:"-"         gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	ID   string
	Role string
}

// CanModify reports whether the actor may change a resource owned by ownerID.
func (a Actor) CanModify(ownerID string) bool {
	return a.Role == RoleAdmin || (a.ID != "" && a.ID == ownerID)
}
