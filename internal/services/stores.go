package services

import (
	"context"
	"time"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/geo"
)

// BootcampStore persists bootcamps. Lookups that match nothing return
// domain.ErrNotFound; unique violations return domain.ErrDuplicate.
type BootcampStore interface {
	ListBootcamps(ctx context.Context, q domain.ListQuery) ([]domain.Bootcamp, int64, error)
	GetBootcamp(ctx context.Context, id string) (*domain.Bootcamp, error)
	CreateBootcamp(ctx context.Context, b *domain.Bootcamp) error
	UpdateBootcamp(ctx context.Context, b *domain.Bootcamp) error
	DeleteBootcamp(ctx context.Context, id string) error
	BootcampsWithin(ctx context.Context, c geo.Circle) ([]domain.Bootcamp, error)
	SetBootcampPhoto(ctx context.Context, id, photo string) error
}

// CourseStore persists courses.
type CourseStore interface {
	ListCourses(ctx context.Context, q domain.ListQuery) ([]domain.Course, int64, error)
	GetCourse(ctx context.Context, id string) (*domain.Course, error)
	CreateCourse(ctx context.Context, c *domain.Course) error
	UpdateCourse(ctx context.Context, c *domain.Course) error
	DeleteCourse(ctx context.Context, id string) error
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// IdempotencyStore records create requests carrying an Idempotency-Key.
type IdempotencyStore interface {
	GetIdempotency(ctx context.Context, userID, scope, key string, now time.Time) (*domain.Idempotency, error)
	CreateIdempotency(ctx context.Context, userID, scope, key, resourceID string, status int, ttl time.Duration) (*domain.Idempotency, error)
}

// Store is implemented by each persistence backend.
type Store interface {
	BootcampStore
	CourseStore
	UserStore
	IdempotencyStore
}
