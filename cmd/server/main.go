// Command server runs the bootcamp directory API.
//
// @title                      Bootcamp Directory API
// @version                    1.0
// @description                Bootcamps, courses and accounts with geo radius search and photo uploads.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-bootcamp-backend/internal/auth"
	"github.com/tbourn/go-bootcamp-backend/internal/config"
	"github.com/tbourn/go-bootcamp-backend/internal/geocoder"
	httpapi "github.com/tbourn/go-bootcamp-backend/internal/http"
	"github.com/tbourn/go-bootcamp-backend/internal/mongostore"
	"github.com/tbourn/go-bootcamp-backend/internal/observability"
	"github.com/tbourn/go-bootcamp-backend/internal/repo"
	"github.com/tbourn/go-bootcamp-backend/internal/services"
	"github.com/tbourn/go-bootcamp-backend/internal/storage"
	"github.com/tbourn/go-bootcamp-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownGrace = 15 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	sysutil.SetLogLevel(cfg.LogLevel)
	log.Logger = sysutil.NewLogger(os.Stdout, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownTracing, err := observability.Setup(ctx, cfg, version)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing.Within(5 * time.Second); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	gc, closeCache, err := newGeocoder(ctx, cfg.Geocoder)
	if err != nil {
		return err
	}
	defer closeCache()

	mover, err := newMover(cfg.Uploads)
	if err != nil {
		return err
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Store:    store,
		Geocoder: gc,
		Mover:    mover,
		Tokens:   auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.JWTExpire),
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Str("db", cfg.DBDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// openStore connects the configured backend and prepares its schema.
func openStore(ctx context.Context, cfg config.Config) (services.Store, func(), error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		ms, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
		if err != nil {
			return nil, nil, err
		}
		if err := ms.EnsureIndexes(ctx); err != nil {
			_ = ms.Close(context.Background())
			return nil, nil, err
		}
		return ms, func() {
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := ms.Close(cctx); err != nil {
				log.Warn().Err(err).Msg("mongodb disconnect")
			}
		}, nil

	default:
		db, err := repo.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if cfg.OTEL.Enabled {
			if err := repo.EnableTracing(db); err != nil {
				_ = repo.Close(db)
				return nil, nil, err
			}
		}
		if err := repo.AutoMigrate(db); err != nil {
			_ = repo.Close(db)
			return nil, nil, err
		}
		log.Info().Str("path", cfg.DBPath).Msg("sqlite ready")
		go purgeIdempotency(ctx, db, cfg.IdempotencyTTL)
		return httpapi.GormStore{DB: db}, func() {
			if err := repo.Close(db); err != nil {
				log.Warn().Err(err).Msg("sqlite close")
			}
		}, nil
	}
}

// purgeIdempotency deletes expired idempotency records every ttl until ctx
// ends. Mongo expires them with a TTL index instead.
func purgeIdempotency(ctx context.Context, db *gorm.DB, ttl time.Duration) {
	t := time.NewTicker(ttl)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("idempotency purge")
			}
		}
	}
}

// newGeocoder returns nil when no API key is configured; radius search then
// answers 503 and bootcamps keep whatever location they were given.
func newGeocoder(ctx context.Context, gc config.GeocoderConfig) (geocoder.Geocoder, func(), error) {
	noop := func() {}
	if gc.APIKey == "" {
		log.Warn().Msg("GEOCODER_API_KEY not set; geocoding disabled")
		return nil, noop, nil
	}
	mq := geocoder.NewMapQuest(gc.APIKey, gc.BaseURL, gc.Timeout)

	if gc.RedisURL == "" {
		return &geocoder.Cached{Next: mq, Cache: geocoder.NewMemoryCache(gc.CacheTTL)}, noop, nil
	}
	rc, err := geocoder.NewRedisCache(ctx, gc.RedisURL, gc.CacheTTL)
	if err != nil {
		return nil, nil, err
	}
	return &geocoder.Cached{Next: mq, Cache: rc}, closeQuietly(rc, "redis close"), nil
}

func newMover(up config.UploadConfig) (storage.Mover, error) {
	if up.Backend == config.BackendS3 {
		sess, err := storage.NewAWSSession(up.AWSRegion, up.AWSEndpoint)
		if err != nil {
			return nil, err
		}
		return storage.NewS3(sess, up.S3Bucket, up.S3Prefix), nil
	}
	return storage.NewLocal(up.Path)
}

func closeQuietly(c io.Closer, msg string) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg(msg)
		}
	}
}
