package mongostore

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

// CreateUser inserts u. A taken email yields domain.ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if u.ID == "" {
		u.ID = domain.NewID()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := s.users.InsertOne(ctx, fromUser(u))
	return mapErr(err)
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

// GetUserByEmail fetches a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	var d userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	u := d.user()
	return &u, nil
}
