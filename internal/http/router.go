// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, error rendering, panic
// recovery, metrics, compression, authentication, idempotency, rate limiting,
// CORS and security headers.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/tbourn/go-bootcamp-backend/docs"
	"github.com/tbourn/go-bootcamp-backend/internal/auth"
	"github.com/tbourn/go-bootcamp-backend/internal/config"
	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/geocoder"
	"github.com/tbourn/go-bootcamp-backend/internal/http/handlers"
	"github.com/tbourn/go-bootcamp-backend/internal/http/middleware"
	"github.com/tbourn/go-bootcamp-backend/internal/services"
	"github.com/tbourn/go-bootcamp-backend/internal/storage"
)

// UploadsPath is where locally stored photos are served.
const UploadsPath = "/uploads"

// Deps are the collaborators built by main.
type Deps struct {
	Store    services.Store
	Geocoder geocoder.Geocoder // nil disables geocoding
	Mover    storage.Mover
	Tokens   *auth.Tokens
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Access log (scrubbed outside development)
//  4. Metrics
//  5. Body size limiter
//  6. gzip
//  7. ErrorHandler: renders forwarded errors, so it wraps everything below
//  8. Recovery: panics below this point become forwarded 500s; steps 1-7
//     must not panic
//  9. Authenticate (soft): identifies the caller for the next two steps
//  10. Idempotency validator (before rate limiting to allow bypass on replay)
//  11. Rate limiter (per user/IP, bypass on replay)
//  12. CORS and security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{
		Scrub:       !cfg.IsDevelopment(),
		MaskHeaders: []string{middleware.HeaderIdempotencyKey},
		Quiet:       []string{"/health", "/metrics"},
	}))
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(limitBody(bodyLimit(cfg.Uploads.MaxFileUpload)))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", UploadsPath})))

	// Recovery sits inside ErrorHandler so a panic is rendered as the JSON
	// envelope. The layers registered above it must not panic.
	r.Use(handlers.ErrorHandler())
	r.Use(middleware.Recovery())
	r.Use(middleware.Authenticate(deps.Tokens))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
			_, err := deps.Store.GetIdempotency(ctx, userID, scope, key, now)
			switch {
			case err == nil:
				return true, nil
			case errors.Is(err, domain.ErrNotFound):
				return false, nil
			}
			return false, err
		},
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:      cfg.Security.EnableHSTS,
		HSTSMaxAge:      cfg.Security.HSTSMaxAge,
		EnablePolicy:    true,
		NoStorePrefixes: []string{join(cfg.APIBasePath, "/auth")},
		UploadPrefixes:  []string{UploadsPath},
	}))

	r.NoRoute(handlers.Wrap(handlers.NotFound))
	r.NoMethod(handlers.Wrap(handlers.MethodNotAllowed))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if cfg.Uploads.Backend == config.BackendLocal && cfg.Uploads.Path != "" {
		r.Static(UploadsPath, cfg.Uploads.Path)
	}

	// Dependency injection: services ← store/geocoder/mover
	bootcampSvc := &services.BootcampService{
		Store:    deps.Store,
		Geocoder: deps.Geocoder,
		Idem:     deps.Store,
		IdemTTL:  cfg.IdempotencyTTL,
	}
	courseSvc := &services.CourseService{Bootcamps: deps.Store, Courses: deps.Store}
	authSvc := &services.AuthService{Users: deps.Store, Tokens: deps.Tokens}
	photoSvc := &services.PhotoService{Bootcamps: deps.Store, Mover: deps.Mover, MaxSize: cfg.Uploads.MaxFileUpload}

	h := handlers.New(bootcampSvc, courseSvc, authSvc, photoSvc, handlers.Options{
		CookieTTL:    cfg.Auth.CookieExpire,
		SecureCookie: !cfg.IsDevelopment(),
	})

	write := []gin.HandlerFunc{
		middleware.Protect(),
		middleware.Authorize(domain.RolePublisher, domain.RoleAdmin),
	}
	guarded := func(fn handlers.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, write...), handlers.Wrap(fn))
	}

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Bootcamps
		api.GET("/bootcamps", middleware.AdvancedResults(domain.BootcampFields, h.BootcampLister()), handlers.Wrap(h.GetBootcamps))
		api.GET("/bootcamps/radius/:zipcode/:distance", handlers.Wrap(h.GetBootcampsInRadius))
		api.GET("/bootcamps/:id", handlers.Wrap(h.GetBootcamp))
		api.POST("/bootcamps", guarded(h.CreateBootcamp)...)
		api.PUT("/bootcamps/:id", guarded(h.UpdateBootcamp)...)
		api.DELETE("/bootcamps/:id", guarded(h.DeleteBootcamp)...)
		api.PUT("/bootcamps/:id/photo", guarded(h.BootcampPhotoUpload)...)

		// Courses
		api.GET("/bootcamps/:id/courses", handlers.Wrap(h.GetBootcampCourses))
		api.POST("/bootcamps/:id/courses", guarded(h.AddCourse)...)
		api.GET("/courses", middleware.AdvancedResults(domain.CourseFields, h.CourseLister()), handlers.Wrap(h.GetCourses))
		api.GET("/courses/:id", handlers.Wrap(h.GetCourse))
		api.PUT("/courses/:id", guarded(h.UpdateCourse)...)
		api.DELETE("/courses/:id", guarded(h.DeleteCourse)...)

		// Auth
		api.POST("/auth/register", handlers.Wrap(h.Register))
		api.POST("/auth/login", handlers.Wrap(h.Login))
		api.GET("/auth/me", middleware.Protect(), handlers.Wrap(h.Me))
		api.GET("/auth/logout", handlers.Wrap(h.Logout))
	}
}

// corsMiddleware allows every origin when none are configured; otherwise it
// echoes allowlisted origins.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", middleware.HeaderIdempotencyReplayed},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			// ACAO: * even without an Origin header (simple health checks).
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	// Cookies are only sent cross-site to explicitly allowed origins.
	base.AllowOrigins = origins
	base.AllowCredentials = true
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// bodyLimit leaves room for multipart framing around the largest photo.
func bodyLimit(maxUpload int64) int64 {
	const (
		floor = 1 << 20
		slack = 64 << 10
	)
	return max(floor, maxUpload+slack)
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

func join(base, path string) string {
	if base == "/" {
		return path
	}
	return base + path
}
