package mongostore

import (
	"time"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

type pointDoc struct {
	Type             string    `bson:"type"`
	Coordinates      []float64 `bson:"coordinates"`
	FormattedAddress string    `bson:"formattedAddress,omitempty"`
	Street           string    `bson:"street,omitempty"`
	City             string    `bson:"city,omitempty"`
	State            string    `bson:"state,omitempty"`
	Zipcode          string    `bson:"zipcode,omitempty"`
	Country          string    `bson:"country,omitempty"`
}

type bootcampDoc struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	Slug          string    `bson:"slug"`
	Description   string    `bson:"description"`
	Website       string    `bson:"website,omitempty"`
	Phone         string    `bson:"phone,omitempty"`
	Email         string    `bson:"email,omitempty"`
	Address       string    `bson:"address"`
	Location      *pointDoc `bson:"location,omitempty"`
	Careers       []string  `bson:"careers"`
	AverageRating *float64  `bson:"averageRating,omitempty"`
	AverageCost   *float64  `bson:"averageCost,omitempty"`
	Photo         string    `bson:"photo"`
	Housing       bool      `bson:"housing"`
	JobAssistance bool      `bson:"jobAssistance"`
	JobGuarantee  bool      `bson:"jobGuarantee"`
	AcceptGi      bool      `bson:"acceptGi"`
	User          string    `bson:"user,omitempty"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// A location without valid coordinates is omitted: the 2dsphere index
// rejects malformed GeoJSON but skips missing fields.
func fromPoint(p domain.GeoPoint) *pointDoc {
	if !p.Valid() {
		return nil
	}
	return &pointDoc{
		Type:             "Point",
		Coordinates:      append([]float64(nil), p.Coordinates...),
		FormattedAddress: p.FormattedAddress,
		Street:           p.Street,
		City:             p.City,
		State:            p.State,
		Zipcode:          p.Zipcode,
		Country:          p.Country,
	}
}

func (d *pointDoc) point() domain.GeoPoint {
	if d == nil {
		return domain.GeoPoint{}
	}
	return domain.GeoPoint{
		Type:             d.Type,
		Coordinates:      d.Coordinates,
		FormattedAddress: d.FormattedAddress,
		Street:           d.Street,
		City:             d.City,
		State:            d.State,
		Zipcode:          d.Zipcode,
		Country:          d.Country,
	}
}

func fromBootcamp(b *domain.Bootcamp) bootcampDoc {
	return bootcampDoc{
		ID:            b.ID,
		Name:          b.Name,
		Slug:          b.Slug,
		Description:   b.Description,
		Website:       b.Website,
		Phone:         b.Phone,
		Email:         b.Email,
		Address:       b.Address,
		Location:      fromPoint(b.Location),
		Careers:       b.Careers,
		AverageRating: b.AverageRating,
		AverageCost:   b.AverageCost,
		Photo:         b.Photo,
		Housing:       b.Housing,
		JobAssistance: b.JobAssistance,
		JobGuarantee:  b.JobGuarantee,
		AcceptGi:      b.AcceptGi,
		User:          b.UserID,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func (d bootcampDoc) bootcamp() domain.Bootcamp {
	b := domain.Bootcamp{
		ID:            d.ID,
		Name:          d.Name,
		Slug:          d.Slug,
		Description:   d.Description,
		Website:       d.Website,
		Phone:         d.Phone,
		Email:         d.Email,
		Address:       d.Address,
		Location:      d.Location.point(),
		Careers:       d.Careers,
		AverageRating: d.AverageRating,
		AverageCost:   d.AverageCost,
		Photo:         d.Photo,
		Housing:       d.Housing,
		JobAssistance: d.JobAssistance,
		JobGuarantee:  d.JobGuarantee,
		AcceptGi:      d.AcceptGi,
		UserID:        d.User,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	b.SyncGeoColumns()
	return b
}

type courseDoc struct {
	ID                   string    `bson:"_id"`
	Title                string    `bson:"title"`
	Description          string    `bson:"description"`
	Weeks                int       `bson:"weeks"`
	Tuition              float64   `bson:"tuition"`
	MinimumSkill         string    `bson:"minimumSkill"`
	ScholarshipAvailable bool      `bson:"scholarshipAvailable"`
	Bootcamp             string    `bson:"bootcamp"`
	User                 string    `bson:"user,omitempty"`
	CreatedAt            time.Time `bson:"createdAt"`
	UpdatedAt            time.Time `bson:"updatedAt"`
}

func fromCourse(c *domain.Course) courseDoc {
	return courseDoc{
		ID:                   c.ID,
		Title:                c.Title,
		Description:          c.Description,
		Weeks:                c.Weeks,
		Tuition:              c.Tuition,
		MinimumSkill:         c.MinimumSkill,
		ScholarshipAvailable: c.ScholarshipAvailable,
		Bootcamp:             c.BootcampID,
		User:                 c.UserID,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

func (d courseDoc) course() domain.Course {
	return domain.Course{
		ID:                   d.ID,
		Title:                d.Title,
		Description:          d.Description,
		Weeks:                d.Weeks,
		Tuition:              d.Tuition,
		MinimumSkill:         d.MinimumSkill,
		ScholarshipAvailable: d.ScholarshipAvailable,
		BootcampID:           d.Bootcamp,
		UserID:               d.User,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

type userDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Role      string    `bson:"role"`
	Password  string    `bson:"password"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func fromUser(u *domain.User) userDoc {
	return userDoc{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Password: u.Password, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func (d userDoc) user() domain.User {
	return domain.User{ID: d.ID, Name: d.Name, Email: d.Email, Role: d.Role, Password: d.Password, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

type idempotencyDoc struct {
	ID         string    `bson:"_id"`
	UserID     string    `bson:"userId"`
	Scope      string    `bson:"scope"`
	Key        string    `bson:"key"`
	ResourceID string    `bson:"resourceId"`
	Status     int       `bson:"status"`
	CreatedAt  time.Time `bson:"createdAt"`
	ExpiresAt  time.Time `bson:"expiresAt"`
}

func (d idempotencyDoc) record() domain.Idempotency {
	return domain.Idempotency{
		ID:         d.ID,
		UserID:     d.UserID,
		Scope:      d.Scope,
		Key:        d.Key,
		ResourceID: d.ResourceID,
		Status:     d.Status,
		CreatedAt:  d.CreatedAt,
		ExpiresAt:  d.ExpiresAt,
	}
}
