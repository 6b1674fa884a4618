// Package mongostore persists bootcamps, courses, users and idempotency
// records in MongoDB. Radius queries run server-side as $geoWithin /
// $centerSphere against a 2dsphere index on bootcamps.location.
package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

// Collection names.
const (
	BootcampsCollection   = "bootcamps"
	CoursesCollection     = "courses"
	UsersCollection       = "users"
	IdempotencyCollection = "idempotency"
)

// Store is a MongoDB-backed implementation of every service store.
type Store struct {
	client      *mongo.Client
	db          *mongo.Database
	bootcamps   *mongo.Collection
	courses     *mongo.Collection
	users       *mongo.Collection
	idempotency *mongo.Collection
}

// Connect dials uri, verifies the connection and returns a Store on dbName.
func Connect(ctx context.Context, uri, dbName string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Info().Str("database", dbName).Msg("connected to mongodb")
	return New(client, dbName), nil
}

// New wraps an existing client.
func New(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		client:      client,
		db:          db,
		bootcamps:   db.Collection(BootcampsCollection),
		courses:     db.Collection(CoursesCollection),
		users:       db.Collection(UsersCollection),
		idempotency: db.Collection(IdempotencyCollection),
	}
}

// Database returns the underlying database handle.
func (s *Store) Database() *mongo.Database { return s.db }

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

// Ping checks server reachability.
func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, readpref.Primary()) }

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrDuplicate
	}
	return err
}
