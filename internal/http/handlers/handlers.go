package handlers

import (
	"context"
	"time"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/geo"
	"github.com/tbourn/go-bootcamp-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// BootcampService defines the bootcamp operations consumed by the handlers.
//
// Implementations must be safe for concurrent use and honor ctx. Failures
// should be *apperr.Error or errors apperr.From understands.
type BootcampService interface {
	List(ctx context.Context, q domain.ListQuery) ([]domain.Bootcamp, int64, error)
	Get(ctx context.Context, id string) (*domain.Bootcamp, error)
	Create(ctx context.Context, actor domain.Actor, p domain.BootcampPatch) (*domain.Bootcamp, error)
	// CreateIdempotent returns the bootcamp created earlier under the same
	// (actor, scope, key) instead of creating a second one.
	CreateIdempotent(ctx context.Context, actor domain.Actor, scope, key string, p domain.BootcampPatch) (*domain.Bootcamp, bool, error)
	Update(ctx context.Context, actor domain.Actor, id string, p domain.BootcampPatch) (*domain.Bootcamp, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	WithinRadius(ctx context.Context, zipcode string, distance float64, unit geo.Unit) ([]domain.Bootcamp, error)
}

// CourseService defines the course operations consumed by the handlers.
type CourseService interface {
	List(ctx context.Context, q domain.ListQuery) ([]domain.Course, int64, error)
	ListForBootcamp(ctx context.Context, bootcampID string, q domain.ListQuery) ([]domain.Course, int64, error)
	Get(ctx context.Context, id string) (*domain.Course, error)
	Create(ctx context.Context, actor domain.Actor, bootcampID string, p domain.CoursePatch) (*domain.Course, error)
	Update(ctx context.Context, actor domain.Actor, id string, p domain.CoursePatch) (*domain.Course, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

// AuthService registers users and issues session tokens.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// PhotoService stores bootcamp photos.
type PhotoService interface {
	Upload(ctx context.Context, actor domain.Actor, id string, f *services.Upload) (string, error)
}

var (
	_ BootcampService = (*services.BootcampService)(nil)
	_ CourseService   = (*services.CourseService)(nil)
	_ AuthService     = (*services.AuthService)(nil)
	_ PhotoService    = (*services.PhotoService)(nil)
)

//
// Handler wiring
//

// Options tune transport details that do not belong to the services.
type Options struct {
	// CookieTTL is the lifetime of the token cookie.
	CookieTTL time.Duration
	// SecureCookie marks the token cookie Secure (production).
	SecureCookie bool
}

// Handlers groups the HTTP endpoints. It depends on the service interfaces
// only, so tests can substitute fakes.
type Handlers struct {
	bootcamps BootcampService
	courses   CourseService
	auth      AuthService
	photos    PhotoService
	opts      Options
}

// New constructs Handlers bound to the given services.
func New(b BootcampService, c CourseService, a AuthService, p PhotoService, opts Options) *Handlers {
	if opts.CookieTTL <= 0 {
		opts.CookieTTL = 30 * 24 * time.Hour
	}
	return &Handlers{bootcamps: b, courses: c, auth: a, photos: p, opts: opts}
}
