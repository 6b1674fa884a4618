package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bootcamp-backend/internal/apperr"
	"github.com/tbourn/go-bootcamp-backend/internal/auth"
	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/geo"
	"github.com/tbourn/go-bootcamp-backend/internal/http/middleware"
	"github.com/tbourn/go-bootcamp-backend/internal/services"
)

// ---------- service stubs (func fields; nil means "not expected") ----------

type stubBootcamps struct {
	list             func(context.Context, domain.ListQuery) ([]domain.Bootcamp, int64, error)
	get              func(context.Context, string) (*domain.Bootcamp, error)
	create           func(context.Context, domain.Actor, domain.BootcampPatch) (*domain.Bootcamp, error)
	createIdempotent func(context.Context, domain.Actor, string, string, domain.BootcampPatch) (*domain.Bootcamp, bool, error)
	update           func(context.Context, domain.Actor, string, domain.BootcampPatch) (*domain.Bootcamp, error)
	del              func(context.Context, domain.Actor, string) error
	within           func(context.Context, string, float64, geo.Unit) ([]domain.Bootcamp, error)
}

func (s stubBootcamps) List(ctx context.Context, q domain.ListQuery) ([]domain.Bootcamp, int64, error) {
	return s.list(ctx, q)
}
func (s stubBootcamps) Get(ctx context.Context, id string) (*domain.Bootcamp, error) {
	return s.get(ctx, id)
}
func (s stubBootcamps) Create(ctx context.Context, a domain.Actor, p domain.BootcampPatch) (*domain.Bootcamp, error) {
	return s.create(ctx, a, p)
}
func (s stubBootcamps) CreateIdempotent(ctx context.Context, a domain.Actor, scope, key string, p domain.BootcampPatch) (*domain.Bootcamp, bool, error) {
	return s.createIdempotent(ctx, a, scope, key, p)
}
func (s stubBootcamps) Update(ctx context.Context, a domain.Actor, id string, p domain.BootcampPatch) (*domain.Bootcamp, error) {
	return s.update(ctx, a, id, p)
}
func (s stubBootcamps) Delete(ctx context.Context, a domain.Actor, id string) error {
	return s.del(ctx, a, id)
}
func (s stubBootcamps) WithinRadius(ctx context.Context, zip string, d float64, u geo.Unit) ([]domain.Bootcamp, error) {
	return s.within(ctx, zip, d, u)
}

type stubCourses struct {
	list            func(context.Context, domain.ListQuery) ([]domain.Course, int64, error)
	listForBootcamp func(context.Context, string, domain.ListQuery) ([]domain.Course, int64, error)
	get             func(context.Context, string) (*domain.Course, error)
	create          func(context.Context, domain.Actor, string, domain.CoursePatch) (*domain.Course, error)
	update          func(context.Context, domain.Actor, string, domain.CoursePatch) (*domain.Course, error)
	del             func(context.Context, domain.Actor, string) error
}

func (s stubCourses) List(ctx context.Context, q domain.ListQuery) ([]domain.Course, int64, error) {
	return s.list(ctx, q)
}
func (s stubCourses) ListForBootcamp(ctx context.Context, id string, q domain.ListQuery) ([]domain.Course, int64, error) {
	return s.listForBootcamp(ctx, id, q)
}
func (s stubCourses) Get(ctx context.Context, id string) (*domain.Course, error) { return s.get(ctx, id) }
func (s stubCourses) Create(ctx context.Context, a domain.Actor, id string, p domain.CoursePatch) (*domain.Course, error) {
	return s.create(ctx, a, id, p)
}
func (s stubCourses) Update(ctx context.Context, a domain.Actor, id string, p domain.CoursePatch) (*domain.Course, error) {
	return s.update(ctx, a, id, p)
}
func (s stubCourses) Delete(ctx context.Context, a domain.Actor, id string) error { return s.del(ctx, a, id) }

type stubAuth struct {
	register func(context.Context, services.RegisterInput) (*domain.User, string, error)
	login    func(context.Context, string, string) (*domain.User, string, error)
	me       func(context.Context, string) (*domain.User, error)
}

func (s stubAuth) Register(ctx context.Context, in services.RegisterInput) (*domain.User, string, error) {
	return s.register(ctx, in)
}
func (s stubAuth) Login(ctx context.Context, email, pw string) (*domain.User, string, error) {
	return s.login(ctx, email, pw)
}
func (s stubAuth) Me(ctx context.Context, id string) (*domain.User, error) { return s.me(ctx, id) }

type stubPhotos struct {
	upload func(context.Context, domain.Actor, string, *services.Upload) (string, error)
}

func (s stubPhotos) Upload(ctx context.Context, a domain.Actor, id string, f *services.Upload) (string, error) {
	return s.upload(ctx, a, id, f)
}

// ---------- router + request helpers ----------

var testTokens = auth.NewTokens("handlers-test-secret", time.Hour)

// newTestRouter mounts the handlers the way the production router does,
// minus the operational middleware.
func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), ErrorHandler(), middleware.Recovery(), middleware.Authenticate(testTokens))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	r.NoRoute(Wrap(NotFound))

	write := []gin.HandlerFunc{middleware.Protect(), middleware.Authorize(domain.RolePublisher, domain.RoleAdmin)}
	with := func(hs ...gin.HandlerFunc) []gin.HandlerFunc { return append(append([]gin.HandlerFunc{}, write...), hs...) }

	r.GET("/bootcamps", middleware.AdvancedResults(domain.BootcampFields, h.BootcampLister()), Wrap(h.GetBootcamps))
	r.GET("/bootcamps/radius/:zipcode/:distance", Wrap(h.GetBootcampsInRadius))
	r.GET("/bootcamps/:id", Wrap(h.GetBootcamp))
	r.POST("/bootcamps", with(Wrap(h.CreateBootcamp))...)
	r.PUT("/bootcamps/:id", with(Wrap(h.UpdateBootcamp))...)
	r.DELETE("/bootcamps/:id", with(Wrap(h.DeleteBootcamp))...)
	r.PUT("/bootcamps/:id/photo", with(Wrap(h.BootcampPhotoUpload))...)
	r.GET("/bootcamps/:id/courses", Wrap(h.GetBootcampCourses))
	r.POST("/bootcamps/:id/courses", with(Wrap(h.AddCourse))...)
	r.GET("/courses", middleware.AdvancedResults(domain.CourseFields, h.CourseLister()), Wrap(h.GetCourses))
	r.GET("/courses/:id", Wrap(h.GetCourse))
	r.PUT("/courses/:id", with(Wrap(h.UpdateCourse))...)
	r.DELETE("/courses/:id", with(Wrap(h.DeleteCourse))...)
	r.POST("/auth/register", Wrap(h.Register))
	r.POST("/auth/login", Wrap(h.Login))
	r.GET("/auth/me", middleware.Protect(), Wrap(h.Me))
	r.GET("/auth/logout", Wrap(h.Logout))
	return r
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := testTokens.Issue(userID, role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + tok
}

func do(r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		buf, _ := json.Marshal(b)
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return serve(r, req)
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success    bool             `json:"success"`
	Count      *int             `json:"count"`
	Pagination *json.RawMessage `json:"pagination"`
	Data       json.RawMessage  `json:"data"`
	Error      string           `json:"error"`
	Code       string           `json:"code"`
	RequestID  string           `json:"request_id"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return e
}

func notFound(kind, id string) error {
	return apperr.NotFound("%s not found with id of %s", kind, id)
}
