// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, persistence, uploads, geocoding, auth, rate limiting and
// observability settings.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-bootcamp-backend/internal/sysutil"
	"github.com/tbourn/go-bootcamp-backend/internal/utils"
)

// Environments recognised by APP_ENV / NODE_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Persistence drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Upload backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// MongoConfig configures the document store.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// UploadConfig configures bootcamp photo uploads.
type UploadConfig struct {
	MaxFileUpload int64  // bytes
	Path          string // local directory, also served under /uploads
	Backend       string // local|s3
	S3Bucket      string
	S3Prefix      string
	AWSRegion     string
	AWSEndpoint   string // optional, for S3-compatible stores
}

// GeocoderConfig configures address and zipcode lookups.
type GeocoderConfig struct {
	Provider string
	APIKey   string // empty disables geocoding
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
	RedisURL string // optional shared cache
}

// AuthConfig configures session tokens.
type AuthConfig struct {
	JWTSecret    string
	JWTExpire    time.Duration
	CookieExpire time.Duration
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 60s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test
	Env               string        // development|production|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Persistence
	DBDriver string // sqlite|mongo
	DBPath   string // SQLite path
	Mongo    MongoConfig

	Uploads  UploadConfig
	Geocoder GeocoderConfig
	Auth     AuthConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// IsDevelopment reports whether the service runs in the development
// environment.
func (c Config) IsDevelopment() bool { return c.Env == EnvDevelopment }

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	env := strings.ToLower(strings.TrimSpace(sysutil.FirstNonEmpty(
		os.Getenv("APP_ENV"), os.Getenv("NODE_ENV"), EnvDevelopment,
	)))
	ginDefault := "release"
	if env == EnvDevelopment {
		ginDefault = "debug"
	}

	cfg := Config{
		// Server
		Port:              getenv("PORT", "5000"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", ginDefault)),
		Env:               env,

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", env == EnvDevelopment),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Persistence
		DBDriver: strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
		DBPath:   getenv("DB_PATH", "bootcamps.db"),
		Mongo: MongoConfig{
			URI:            getenv("MONGO_URI", ""),
			Database:       getenv("MONGO_DATABASE", "devcamper"),
			ConnectTimeout: getdur("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},

		Uploads: UploadConfig{
			MaxFileUpload: getint64("MAX_FILE_UPLOAD", 1000000),
			Path:          getenv("FILE_UPLOAD_PATH", "./public/uploads"),
			Backend:       strings.ToLower(getenv("UPLOAD_BACKEND", BackendLocal)),
			S3Bucket:      getenv("S3_BUCKET", ""),
			S3Prefix:      getenv("S3_PREFIX", ""),
			AWSRegion:     getenv("AWS_REGION", "us-east-1"),
			AWSEndpoint:   getenv("AWS_ENDPOINT", ""),
		},

		Geocoder: GeocoderConfig{
			Provider: strings.ToLower(getenv("GEOCODER_PROVIDER", "mapquest")),
			APIKey:   getenv("GEOCODER_API_KEY", ""),
			BaseURL:  getenv("GEOCODER_BASE_URL", ""),
			Timeout:  getdur("GEOCODER_TIMEOUT", 10*time.Second),
			CacheTTL: getdur("GEOCODER_CACHE_TTL", 24*time.Hour),
			RedisURL: getenv("REDIS_URL", ""),
		},

		Auth: AuthConfig{
			JWTSecret:    getenv("JWT_SECRET", ""),
			JWTExpire:    getdur("JWT_EXPIRE", 30*24*time.Hour),
			CookieExpire: getdur("JWT_COOKIE_EXPIRE", 30*24*time.Hour),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-bootcamp-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.Geocoder.Provider == "" {
		cfg.Geocoder.Provider = "mapquest"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DBDriver {
	case DriverSQLite:
		if strings.TrimSpace(cfg.DBPath) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case DriverMongo:
		if strings.TrimSpace(cfg.Mongo.URI) == "" {
			return cfg, errors.New("MONGO_URI is required when DB_DRIVER=mongo")
		}
		if cfg.Mongo.ConnectTimeout <= 0 {
			return cfg, errors.New("MONGO_CONNECT_TIMEOUT must be > 0")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be sqlite or mongo")
	}
	if cfg.Uploads.MaxFileUpload <= 0 {
		return cfg, errors.New("MAX_FILE_UPLOAD must be > 0")
	}
	switch cfg.Uploads.Backend {
	case BackendLocal:
		if strings.TrimSpace(cfg.Uploads.Path) == "" {
			return cfg, errors.New("FILE_UPLOAD_PATH must not be empty")
		}
	case BackendS3:
		if strings.TrimSpace(cfg.Uploads.S3Bucket) == "" {
			return cfg, errors.New("S3_BUCKET is required when UPLOAD_BACKEND=s3")
		}
	default:
		return cfg, errors.New("UPLOAD_BACKEND must be local or s3")
	}
	if cfg.Geocoder.Provider != "mapquest" {
		return cfg, errors.New("GEOCODER_PROVIDER must be mapquest")
	}
	if cfg.Geocoder.Timeout <= 0 || cfg.Geocoder.CacheTTL <= 0 {
		return cfg, errors.New("GEOCODER_TIMEOUT and GEOCODER_CACHE_TTL must be > 0")
	}
	if cfg.Auth.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return cfg, errors.New("JWT_SECRET is required outside development")
		}
		cfg.Auth.JWTSecret = "dev-only-secret"
	}
	if cfg.Auth.JWTExpire <= 0 || cfg.Auth.CookieExpire <= 0 {
		return cfg, errors.New("JWT_EXPIRE and JWT_COOKIE_EXPIRE must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	return utils.AtoiDefault(os.Getenv(k), def)
}

func getint64(k string, def int64) int64 {
	return utils.Int64Default(os.Getenv(k), def)
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if sysutil.IsTruthy(v) {
			return true
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
