package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-bootcamp-backend/internal/apperr"
	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/geo"
	"github.com/tbourn/go-bootcamp-backend/internal/geocoder"
)

func ptr[T any](v T) *T { return &v }

var (
	publisher = domain.Actor{ID: "pub-1", Role: domain.RolePublisher}
	stranger  = domain.Actor{ID: "pub-2", Role: domain.RolePublisher}
	admin     = domain.Actor{ID: "adm", Role: domain.RoleAdmin}
)

func validPatch(name string) domain.BootcampPatch {
	return domain.BootcampPatch{
		Name:        ptr(name),
		Description: ptr("Full stack web development"),
		Address:     ptr("233 Bay State Rd Boston MA 02215"),
		Careers:     ptr([]string{"Web Development", "UI/UX"}),
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return apperr.From(err).StatusCode()
}

func TestBootcampService_CreateGetRoundTrip(t *testing.T) {
	st := newMemStore()
	svc := &BootcampService{Store: st, Geocoder: staticGeocoder(geocoder.Location{Latitude: 42.35, Longitude: -71.1, City: "Boston"})}
	ctx := context.Background()

	b, err := svc.Create(ctx, publisher, validPatch("Devworks"))
	require.NoError(t, err)
	assert.Equal(t, "devworks", b.Slug)
	assert.Equal(t, publisher.ID, b.UserID)
	assert.Equal(t, domain.DefaultPhoto, b.Photo)
	assert.Equal(t, []float64{-71.1, 42.35}, b.Location.Coordinates)
	assert.Equal(t, "Boston", b.Location.City)

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, *b, *got)
}

func TestBootcampService_CreateKeepsGivenLocation(t *testing.T) {
	calls := 0
	g := geocoder.Func(func(context.Context, string) ([]geocoder.Location, error) {
		calls++
		return nil, nil
	})
	svc := &BootcampService{Store: newMemStore(), Geocoder: g}
	p := validPatch("Located")
	loc := domain.NewPoint(1, 2)
	p.Location = &loc

	b, err := svc.Create(context.Background(), publisher, p)
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, []float64{2, 1}, b.Location.Coordinates)
}

func TestBootcampService_RejectsInvalidLocation(t *testing.T) {
	ctx := context.Background()
	cases := map[string]domain.GeoPoint{
		"polygon":                {Type: "Polygon", Coordinates: []float64{-71.1, 42.35}},
		"out of range":           {Type: "Point", Coordinates: []float64{500, 500}},
		"wrong coordinate count": {Type: "Point", Coordinates: []float64{500, 500, 3}},
	}
	for name, loc := range cases {
		t.Run(name, func(t *testing.T) {
			st := newMemStore()
			svc := &BootcampService{Store: st}

			p := validPatch("Bad Location")
			p.Location = &loc
			_, err := svc.Create(ctx, publisher, p)
			require.Equal(t, http.StatusBadRequest, statusOf(t, err))
			assert.Equal(t, "Please provide a valid GeoJSON point", apperr.From(err).Message)
			assert.Empty(t, st.bootcamps)

			b, err := svc.Create(ctx, publisher, validPatch("Good Location"))
			require.NoError(t, err)
			_, err = svc.Update(ctx, publisher, b.ID, domain.BootcampPatch{Location: &loc})
			require.Equal(t, http.StatusBadRequest, statusOf(t, err))
			stored, _ := st.GetBootcamp(ctx, b.ID)
			assert.NotEqual(t, loc.Coordinates, stored.Location.Coordinates)
		})
	}
}

func TestBootcampService_CreateErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		svc := &BootcampService{Store: newMemStore()}
		_, err := svc.Create(ctx, publisher, domain.BootcampPatch{Name: ptr("x")})
		var ve validator.ValidationErrors
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
		assert.Contains(t, apperr.From(err).Message, "Please add a description")
	})
	t.Run("duplicate", func(t *testing.T) {
		svc := &BootcampService{Store: newMemStore()}
		_, err := svc.Create(ctx, publisher, validPatch("Same"))
		require.NoError(t, err)
		_, err = svc.Create(ctx, publisher, validPatch("Same"))
		assert.ErrorIs(t, err, domain.ErrDuplicate)
		assert.Equal(t, "Duplicate field value entered", apperr.From(err).Message)
	})
	t.Run("address not found", func(t *testing.T) {
		svc := &BootcampService{Store: newMemStore(), Geocoder: staticGeocoder()}
		_, err := svc.Create(ctx, publisher, validPatch("Nowhere"))
		assert.Equal(t, ErrAddressNotFound, err)
	})
	t.Run("geocoder failure", func(t *testing.T) {
		g := geocoder.Func(func(context.Context, string) ([]geocoder.Location, error) { return nil, errBoom })
		svc := &BootcampService{Store: newMemStore(), Geocoder: g}
		_, err := svc.Create(ctx, publisher, validPatch("Down"))
		assert.ErrorIs(t, err, errBoom)
	})
}

func TestBootcampService_GetNotFoundNamesID(t *testing.T) {
	svc := &BootcampService{Store: newMemStore()}
	ctx := context.Background()

	id := domain.NewID()
	_, err := svc.Get(ctx, id)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Equal(t, "Bootcamp not found with id of "+id, apperr.From(err).Message)

	_, err = svc.Get(ctx, "5d713995b721c3bb38c1f5d0")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Contains(t, apperr.From(err).Message, "5d713995b721c3bb38c1f5d0")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestBootcampService_UpdateIsIdempotent(t *testing.T) {
	st := newMemStore()
	svc := &BootcampService{Store: st}
	ctx := context.Background()
	p := validPatch("Original")
	loc := domain.NewPoint(40, -75)
	p.Location = &loc
	b, err := svc.Create(ctx, publisher, p)
	require.NoError(t, err)

	patch := domain.BootcampPatch{Name: ptr("Renamed"), Housing: ptr(true), AverageCost: ptr(9000.0)}
	once, err := svc.Update(ctx, publisher, b.ID, patch)
	require.NoError(t, err)
	twice, err := svc.Update(ctx, publisher, b.ID, patch)
	require.NoError(t, err)

	once.UpdatedAt, twice.UpdatedAt = b.UpdatedAt, b.UpdatedAt
	assert.Equal(t, *once, *twice)
	assert.Equal(t, "Renamed", twice.Name)
	assert.Equal(t, "renamed", twice.Slug)
	assert.True(t, twice.Housing)
}

func TestBootcampService_UpdateRegeocodesChangedAddress(t *testing.T) {
	svc := &BootcampService{Store: newMemStore(), Geocoder: staticGeocoder(geocoder.Location{Latitude: 1, Longitude: 1})}
	ctx := context.Background()
	b, err := svc.Create(ctx, publisher, validPatch("Mover"))
	require.NoError(t, err)

	svc.Geocoder = staticGeocoder(geocoder.Location{Latitude: 2, Longitude: 3})
	got, err := svc.Update(ctx, publisher, b.ID, domain.BootcampPatch{Description: ptr("same address")})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, got.Location.Coordinates)

	got, err = svc.Update(ctx, publisher, b.ID, domain.BootcampPatch{Address: ptr("1 New St")})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2}, got.Location.Coordinates)
}

func TestBootcampService_UpdateErrors(t *testing.T) {
	st := newMemStore()
	svc := &BootcampService{Store: st}
	ctx := context.Background()
	b, err := svc.Create(ctx, publisher, validPatch("Owned"))
	require.NoError(t, err)

	missing := domain.NewID()
	_, err = svc.Update(ctx, publisher, missing, domain.BootcampPatch{Name: ptr("x")})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Contains(t, apperr.From(err).Message, missing)

	_, err = svc.Update(ctx, stranger, b.ID, domain.BootcampPatch{Name: ptr("x")})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = svc.Update(ctx, admin, b.ID, domain.BootcampPatch{Name: ptr("By Admin")})
	assert.NoError(t, err)

	_, err = svc.Update(ctx, publisher, b.ID, domain.BootcampPatch{Website: ptr("notaurl")})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	stored, _ := st.GetBootcamp(ctx, b.ID)
	assert.Empty(t, stored.Website, "invalid update must not be stored")
}

func TestBootcampService_DeleteThenGet404(t *testing.T) {
	st := newMemStore()
	svc := &BootcampService{Store: st}
	ctx := context.Background()
	b, err := svc.Create(ctx, publisher, validPatch("Temp"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, statusOf(t, svc.Delete(ctx, stranger, b.ID)))
	require.NoError(t, svc.Delete(ctx, publisher, b.ID))

	_, err = svc.Get(ctx, b.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	err = svc.Delete(ctx, publisher, b.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Contains(t, apperr.From(err).Message, b.ID)
}

func TestBootcampService_WithinRadiusPassesCenterAndRadius(t *testing.T) {
	var got geo.Circle
	st := newMemStore()
	st.WithinFn = func(_ context.Context, c geo.Circle) ([]domain.Bootcamp, error) {
		got = c
		return []domain.Bootcamp{{Name: "hit"}}, nil
	}
	svc := &BootcampService{Store: st, Geocoder: staticGeocoder(
		geocoder.Location{Latitude: 40.0, Longitude: -75.0},
		geocoder.Location{Latitude: 10, Longitude: 10},
	)}

	out, err := svc.WithinRadius(context.Background(), "19103", 100, geo.Miles)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, geo.Center{-75.0, 40.0}, got.Center)
	assert.Equal(t, 100/3963.0, got.Radius)
	assert.InDelta(t, 0.02523, got.Radius, 1e-5)

	_, err = svc.WithinRadius(context.Background(), "19103", 100, geo.Kilometers)
	require.NoError(t, err)
	assert.Equal(t, 100/6378.0, got.Radius)
}

func TestBootcampService_WithinRadiusErrors(t *testing.T) {
	ctx := context.Background()

	svc := &BootcampService{Store: newMemStore(), Geocoder: staticGeocoder()}
	_, err := svc.WithinRadius(ctx, "00000", 10, geo.Miles)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Equal(t, "No location found for zipcode 00000", apperr.From(err).Message)

	for _, d := range []float64{0, -5} {
		_, err = svc.WithinRadius(ctx, "02118", d, geo.Miles)
		assert.Equal(t, ErrInvalidDistance, err)
	}

	svc.Geocoder = nil
	_, err = svc.WithinRadius(ctx, "02118", 10, geo.Miles)
	assert.Equal(t, ErrNoGeocoder, err)
}

func TestBootcampService_CreateIdempotent(t *testing.T) {
	st := newMemStore()
	svc := &BootcampService{Store: st, Idem: st}
	ctx := context.Background()

	first, replayed, err := svc.CreateIdempotent(ctx, publisher, "/api/v1/bootcamps", "k-1", validPatch("Once"))
	require.NoError(t, err)
	assert.False(t, replayed)

	again, replayed, err := svc.CreateIdempotent(ctx, publisher, "/api/v1/bootcamps", "k-1", validPatch("Once"))
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, st.bootcamps, 1)

	// Another user with the same key is independent.
	_, replayed, err = svc.CreateIdempotent(ctx, admin, "/api/v1/bootcamps", "k-1", validPatch("Twice"))
	require.NoError(t, err)
	assert.False(t, replayed)

	// No key: plain create.
	_, replayed, err = svc.CreateIdempotent(ctx, publisher, "/api/v1/bootcamps", "", validPatch("Thrice"))
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Len(t, st.bootcamps, 3)
}
