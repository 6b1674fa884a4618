package mongostore

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

// GetIdempotency returns the live record for (userID, scope, key).
func (s *Store) GetIdempotency(ctx context.Context, userID, scope, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, domain.ErrNotFound
	}
	var d idempotencyDoc
	err := s.idempotency.FindOne(ctx, bson.M{
		"userId":    userID,
		"scope":     scope,
		"key":       key,
		"expiresAt": bson.M{"$gt": now},
	}).Decode(&d)
	if err != nil {
		return nil, mapErr(err)
	}
	rec := d.record()
	return &rec, nil
}

// CreateIdempotency records that key produced resourceID. The TTL index
// reaps expired documents lazily, so expired ones for the same tuple are
// removed here first.
func (s *Store) CreateIdempotency(ctx context.Context, userID, scope, key, resourceID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if _, err := s.idempotency.DeleteMany(ctx, bson.M{
		"userId": userID, "scope": scope, "key": key,
		"expiresAt": bson.M{"$lte": now},
	}); err != nil {
		return nil, err
	}
	d := idempotencyDoc{
		ID:         domain.NewID(),
		UserID:     userID,
		Scope:      scope,
		Key:        key,
		ResourceID: resourceID,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if _, err := s.idempotency.InsertOne(ctx, d); err != nil {
		return nil, mapErr(err)
	}
	rec := d.record()
	return &rec, nil
}
