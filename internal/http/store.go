package httpapi

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/geo"
	"github.com/tbourn/go-bootcamp-backend/internal/repo"
	"github.com/tbourn/go-bootcamp-backend/internal/services"
)

// GormStore adapts the repository free functions to services.Store so the
// services stay decoupled from the concrete repo package.
type GormStore struct {
	DB *gorm.DB
}

var _ services.Store = GormStore{}

// ListBootcamps proxies repo.ListBootcamps.
func (s GormStore) ListBootcamps(ctx context.Context, q domain.ListQuery) ([]domain.Bootcamp, int64, error) {
	return repo.ListBootcamps(ctx, s.DB, q)
}

// GetBootcamp proxies repo.GetBootcamp.
func (s GormStore) GetBootcamp(ctx context.Context, id string) (*domain.Bootcamp, error) {
	return repo.GetBootcamp(ctx, s.DB, id)
}

// CreateBootcamp proxies repo.CreateBootcamp.
func (s GormStore) CreateBootcamp(ctx context.Context, b *domain.Bootcamp) error {
	return repo.CreateBootcamp(ctx, s.DB, b)
}

// UpdateBootcamp proxies repo.UpdateBootcamp.
func (s GormStore) UpdateBootcamp(ctx context.Context, b *domain.Bootcamp) error {
	return repo.UpdateBootcamp(ctx, s.DB, b)
}

// DeleteBootcamp proxies repo.DeleteBootcamp (courses cascade).
func (s GormStore) DeleteBootcamp(ctx context.Context, id string) error {
	return repo.DeleteBootcamp(ctx, s.DB, id)
}

// BootcampsWithin proxies repo.BootcampsWithin.
func (s GormStore) BootcampsWithin(ctx context.Context, c geo.Circle) ([]domain.Bootcamp, error) {
	return repo.BootcampsWithin(ctx, s.DB, c)
}

// SetBootcampPhoto proxies repo.SetBootcampPhoto.
func (s GormStore) SetBootcampPhoto(ctx context.Context, id, photo string) error {
	return repo.SetBootcampPhoto(ctx, s.DB, id, photo)
}

// ListCourses proxies repo.ListCourses.
func (s GormStore) ListCourses(ctx context.Context, q domain.ListQuery) ([]domain.Course, int64, error) {
	return repo.ListCourses(ctx, s.DB, q)
}

// GetCourse proxies repo.GetCourse.
func (s GormStore) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	return repo.GetCourse(ctx, s.DB, id)
}

// CreateCourse proxies repo.CreateCourse.
func (s GormStore) CreateCourse(ctx context.Context, c *domain.Course) error {
	return repo.CreateCourse(ctx, s.DB, c)
}

// UpdateCourse proxies repo.UpdateCourse.
func (s GormStore) UpdateCourse(ctx context.Context, c *domain.Course) error {
	return repo.UpdateCourse(ctx, s.DB, c)
}

// DeleteCourse proxies repo.DeleteCourse.
func (s GormStore) DeleteCourse(ctx context.Context, id string) error {
	return repo.DeleteCourse(ctx, s.DB, id)
}

// CreateUser proxies repo.CreateUser.
func (s GormStore) CreateUser(ctx context.Context, u *domain.User) error {
	return repo.CreateUser(ctx, s.DB, u)
}

// GetUser proxies repo.GetUser.
func (s GormStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return repo.GetUser(ctx, s.DB, id)
}

// GetUserByEmail proxies repo.GetUserByEmail.
func (s GormStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return repo.GetUserByEmail(ctx, s.DB, email)
}

// GetIdempotency proxies repo.GetIdempotency.
func (s GormStore) GetIdempotency(ctx context.Context, userID, scope, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, s.DB, userID, scope, key, now)
}

// CreateIdempotency proxies repo.CreateIdempotency.
func (s GormStore) CreateIdempotency(ctx context.Context, userID, scope, key, resourceID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, s.DB, userID, scope, key, resourceID, status, ttl)
}
