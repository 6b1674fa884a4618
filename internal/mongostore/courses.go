package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

// ListCourses returns one page of courses matching q and the total count.
func (s *Store) ListCourses(ctx context.Context, q domain.ListQuery) ([]domain.Course, int64, error) {
	filter := buildFilter(q.Filters)
	total, err := s.courses.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := s.courses.Find(ctx, filter, findOptions(q))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var docs []courseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]domain.Course, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.course())
	}
	return out, total, nil
}

// GetCourse fetches a course by id.
func (s *Store) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	var d courseDoc
	if err := s.courses.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	c := d.course()
	return &c, nil
}

// CreateCourse inserts c.
func (s *Store) CreateCourse(ctx context.Context, c *domain.Course) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if c.ID == "" {
		c.ID = domain.NewID()
	}
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := s.courses.InsertOne(ctx, fromCourse(c))
	return mapErr(err)
}

// UpdateCourse replaces the stored document for c.ID.
func (s *Store) UpdateCourse(ctx context.Context, c *domain.Course) error {
	c.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	res, err := s.courses.ReplaceOne(ctx, bson.M{"_id": c.ID}, fromCourse(c))
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteCourse removes course id.
func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	res, err := s.courses.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
