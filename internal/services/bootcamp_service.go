package services

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-bootcamp-backend/internal/apperr"
	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/geo"
	"github.com/tbourn/go-bootcamp-backend/internal/geocoder"
)

// DefaultIdempotencyTTL bounds how long a create can be replayed.
const DefaultIdempotencyTTL = 24 * time.Hour

// BootcampService owns the bootcamp lifecycle.
type BootcampService struct {
	Store    BootcampStore
	Geocoder geocoder.Geocoder // nil disables address geocoding

	Idem    IdempotencyStore
	IdemTTL time.Duration

	now func() time.Time
}

func (s *BootcampService) tracer() trace.Tracer { return otel.Tracer("services/BootcampService") }

func (s *BootcampService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// List returns one page of bootcamps and the total match count.
func (s *BootcampService) List(ctx context.Context, q domain.ListQuery) ([]domain.Bootcamp, int64, error) {
	ctx, span := s.tracer().Start(ctx, "List", trace.WithAttributes(
		attribute.Int("page", q.Page),
		attribute.Int("limit", q.Limit),
		attribute.Int("filters", len(q.Filters)),
	))
	defer span.End()
	return s.Store.ListBootcamps(ctx, q)
}

// Get returns bootcamp id. Unknown or malformed ids yield a 404 naming id.
func (s *BootcampService) Get(ctx context.Context, id string) (*domain.Bootcamp, error) {
	ctx, span := s.tracer().Start(ctx, "Get", trace.WithAttributes(attribute.String("bootcamp.id", id)))
	defer span.End()

	if !domain.ValidID(id) {
		return nil, invalidID(id)
	}
	b, err := s.Store.GetBootcamp(ctx, id)
	if err != nil {
		return nil, lookupErr("Bootcamp", id, err)
	}
	return b, nil
}

// Create validates p and stores a new bootcamp owned by actor. When p has
// no location the address is geocoded.
func (s *BootcampService) Create(ctx context.Context, actor domain.Actor, p domain.BootcampPatch) (*domain.Bootcamp, error) {
	ctx, span := s.tracer().Start(ctx, "Create", trace.WithAttributes(attribute.String("user.id", actor.ID)))
	defer span.End()

	if p.Location != nil && !p.Location.IsPoint() {
		return nil, ErrInvalidLocation
	}
	b := &domain.Bootcamp{UserID: actor.ID, Photo: domain.DefaultPhoto}
	p.Apply(b)
	if err := domain.Validate(b); err != nil {
		return nil, err
	}
	if err := s.locate(ctx, b, p.Location == nil); err != nil {
		return nil, err
	}
	if err := s.Store.CreateBootcamp(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// CreateIdempotent is Create keyed by (actor, scope, key). A repeated key
// returns the bootcamp created the first time with replayed set. An empty
// key behaves like Create.
func (s *BootcampService) CreateIdempotent(ctx context.Context, actor domain.Actor, scope, key string, p domain.BootcampPatch) (b *domain.Bootcamp, replayed bool, err error) {
	if key == "" || s.Idem == nil {
		b, err = s.Create(ctx, actor, p)
		return b, false, err
	}

	rec, err := s.Idem.GetIdempotency(ctx, actor.ID, scope, key, s.clock())
	switch {
	case err == nil:
		b, err = s.Store.GetBootcamp(ctx, rec.ResourceID)
		if err != nil {
			return nil, false, lookupErr("Bootcamp", rec.ResourceID, err)
		}
		return b, true, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, err
	}

	b, err = s.Create(ctx, actor, p)
	if err != nil {
		return nil, false, err
	}
	ttl := s.IdemTTL
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	if _, err := s.Idem.CreateIdempotency(ctx, actor.ID, scope, key, b.ID, http.StatusCreated, ttl); err != nil {
		// The bootcamp exists; a lost record only disables replay for this key.
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Str("bootcamp_id", b.ID).Msg("store idempotency record")
	}
	return b, false, nil
}

// Update applies p to bootcamp id. The merged record is validated before it
// is stored; a changed address is geocoded again unless p sets a location.
func (s *BootcampService) Update(ctx context.Context, actor domain.Actor, id string, p domain.BootcampPatch) (*domain.Bootcamp, error) {
	ctx, span := s.tracer().Start(ctx, "Update", trace.WithAttributes(attribute.String("bootcamp.id", id)))
	defer span.End()

	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(b.UserID) {
		return nil, forbidden(actor, "update", "bootcamp", id)
	}
	if p.Location != nil && !p.Location.IsPoint() {
		return nil, ErrInvalidLocation
	}

	addressChanged := p.Apply(b)
	if err := domain.Validate(b); err != nil {
		return nil, err
	}
	if addressChanged && p.Location == nil {
		if err := s.locate(ctx, b, true); err != nil {
			return nil, err
		}
	}
	if err := s.Store.UpdateBootcamp(ctx, b); err != nil {
		return nil, lookupErr("Bootcamp", id, err)
	}
	return b, nil
}

// Delete removes bootcamp id and its courses.
func (s *BootcampService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	ctx, span := s.tracer().Start(ctx, "Delete", trace.WithAttributes(attribute.String("bootcamp.id", id)))
	defer span.End()

	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(b.UserID) {
		return forbidden(actor, "delete", "bootcamp", id)
	}
	return lookupErr("Bootcamp", id, s.Store.DeleteBootcamp(ctx, id))
}

// WithinRadius geocodes zipcode (first match wins) and returns the bootcamps
// within distance of it.
func (s *BootcampService) WithinRadius(ctx context.Context, zipcode string, distance float64, unit geo.Unit) ([]domain.Bootcamp, error) {
	ctx, span := s.tracer().Start(ctx, "WithinRadius", trace.WithAttributes(
		attribute.String("zipcode", zipcode),
		attribute.Float64("distance", distance),
		attribute.String("unit", string(unit)),
	))
	defer span.End()

	if distance <= 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		return nil, ErrInvalidDistance
	}
	if s.Geocoder == nil {
		return nil, ErrNoGeocoder
	}
	zipcode = strings.TrimSpace(zipcode)
	locs, err := s.Geocoder.Geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	if len(locs) == 0 {
		return nil, apperr.NotFound("No location found for zipcode %s", zipcode)
	}

	c := geo.Circle{
		Center: geo.NewCenter(locs[0].Latitude, locs[0].Longitude),
		Radius: geo.Radius(distance, unit),
	}
	span.SetAttributes(attribute.Float64("radius", c.Radius))
	return s.Store.BootcampsWithin(ctx, c)
}

// locate fills b.Location from the geocoder when required is set or b has
// no usable coordinates. Without a geocoder the bootcamp keeps whatever
// location it has, possibly none.
func (s *BootcampService) locate(ctx context.Context, b *domain.Bootcamp, required bool) error {
	if s.Geocoder == nil || (!required && b.Location.Valid()) {
		return nil
	}
	locs, err := s.Geocoder.Geocode(ctx, b.Address)
	if err != nil {
		return err
	}
	if len(locs) == 0 {
		return ErrAddressNotFound
	}
	b.Location = locs[0].Point()
	return nil
}
