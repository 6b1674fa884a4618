package domain

import "strings"

// BootcampPatch carries the writable bootcamp fields. Nil fields are left
// untouched, so the same patch serves create (applied to a zero Bootcamp)
// and partial update.
type BootcampPatch struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Website       *string   `json:"website"`
	Phone         *string   `json:"phone"`
	Email         *string   `json:"email"`
	Address       *string   `json:"address"`
	Location      *GeoPoint `json:"location"`
	Careers       *[]string `json:"careers"`
	AverageRating *float64  `json:"averageRating"`
	AverageCost   *float64  `json:"averageCost"`
	Housing       *bool     `json:"housing"`
	JobAssistance *bool     `json:"jobAssistance"`
	JobGuarantee  *bool     `json:"jobGuarantee"`
	AcceptGi      *bool     `json:"acceptGi"`
}

// Apply merges p into b and reports whether the address changed.
func (p BootcampPatch) Apply(b *Bootcamp) (addressChanged bool) {
	if p.Name != nil {
		b.Name = strings.TrimSpace(*p.Name)
		b.Slug = Slugify(b.Name)
	}
	if p.Description != nil {
		b.Description = strings.TrimSpace(*p.Description)
	}
	if p.Website != nil {
		b.Website = strings.TrimSpace(*p.Website)
	}
	if p.Phone != nil {
		b.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Email != nil {
		b.Email = strings.TrimSpace(*p.Email)
	}
	if p.Address != nil {
		addr := strings.TrimSpace(*p.Address)
		addressChanged = addr != b.Address
		b.Address = addr
	}
	if p.Location != nil {
		b.Location = *p.Location
		if b.Location.Type == "" && len(b.Location.Coordinates) > 0 {
			b.Location.Type = "Point"
		}
	}
	if p.Careers != nil {
		b.Careers = append([]string(nil), (*p.Careers)...)
	}
	if p.AverageRating != nil {
		v := *p.AverageRating
		b.AverageRating = &v
	}
	if p.AverageCost != nil {
		v := *p.AverageCost
		b.AverageCost = &v
	}
	if p.Housing != nil {
		b.Housing = *p.Housing
	}
	if p.JobAssistance != nil {
		b.JobAssistance = *p.JobAssistance
	}
	if p.JobGuarantee != nil {
		b.JobGuarantee = *p.JobGuarantee
	}
	if p.AcceptGi != nil {
		b.AcceptGi = *p.AcceptGi
	}
	return addressChanged
}

// CoursePatch carries the writable course fields.
type CoursePatch struct {
	Title                *string  `json:"title"`
	Description          *string  `json:"description"`
	Weeks                *int     `json:"weeks"`
	Tuition              *float64 `json:"tuition"`
	MinimumSkill         *string  `json:"minimumSkill"`
	ScholarshipAvailable *bool    `json:"scholarshipAvailable"`
}

// Apply merges p into c.
func (p CoursePatch) Apply(c *Course) {
	if p.Title != nil {
		c.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		c.Description = strings.TrimSpace(*p.Description)
	}
	if p.Weeks != nil {
		c.Weeks = *p.Weeks
	}
	if p.Tuition != nil {
		c.Tuition = *p.Tuition
	}
	if p.MinimumSkill != nil {
		c.MinimumSkill = strings.ToLower(strings.TrimSpace(*p.MinimumSkill))
	}
	if p.ScholarshipAvailable != nil {
		c.ScholarshipAvailable = *p.ScholarshipAvailable
	}
}
