package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the store relies on. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.bootcamps, []mongo.IndexModel{
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName("ux_bootcamp_name")},
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetName("idx_bootcamp_slug")},
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}, Options: options.Index().SetName("idx_bootcamp_location")},
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetName("idx_bootcamp_user")},
		}},
		{s.courses, []mongo.IndexModel{
			{Keys: bson.D{{Key: "bootcamp", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_course_bootcamp")},
		}},
		{s.users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("ux_user_email")},
		}},
		{s.idempotency, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "scope", Value: 1}, {Key: "key", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("ux_user_scope_key"),
			},
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at")},
		}},
	}
	for _, spec := range specs {
		if _, err := spec.coll.Indexes().CreateMany(ctx, spec.models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", spec.coll.Name(), err)
		}
	}
	return nil
}
