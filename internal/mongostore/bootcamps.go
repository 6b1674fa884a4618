package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/geo"
)

func decodeBootcamps(ctx context.Context, cur *mongo.Cursor) ([]domain.Bootcamp, error) {
	defer cur.Close(ctx)
	var docs []bootcampDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Bootcamp, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.bootcamp())
	}
	return out, nil
}

// ListBootcamps returns one page of bootcamps matching q and the total count.
func (s *Store) ListBootcamps(ctx context.Context, q domain.ListQuery) ([]domain.Bootcamp, int64, error) {
	filter := buildFilter(q.Filters)
	total, err := s.bootcamps.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := s.bootcamps.Find(ctx, filter, findOptions(q))
	if err != nil {
		return nil, 0, err
	}
	out, err := decodeBootcamps(ctx, cur)
	return out, total, err
}

// GetBootcamp fetches a bootcamp by id.
func (s *Store) GetBootcamp(ctx context.Context, id string) (*domain.Bootcamp, error) {
	var d bootcampDoc
	if err := s.bootcamps.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	b := d.bootcamp()
	return &b, nil
}

// CreateBootcamp inserts b, assigning ID and timestamps when unset.
func (s *Store) CreateBootcamp(ctx context.Context, b *domain.Bootcamp) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if b.ID == "" {
		b.ID = domain.NewID()
	}
	if b.Photo == "" {
		b.Photo = domain.DefaultPhoto
	}
	b.CreatedAt, b.UpdatedAt = now, now
	b.SyncGeoColumns()
	_, err := s.bootcamps.InsertOne(ctx, fromBootcamp(b))
	return mapErr(err)
}

// UpdateBootcamp replaces the stored document for b.ID.
func (s *Store) UpdateBootcamp(ctx context.Context, b *domain.Bootcamp) error {
	b.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	b.SyncGeoColumns()
	res, err := s.bootcamps.ReplaceOne(ctx, bson.M{"_id": b.ID}, fromBootcamp(b))
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetBootcampPhoto stores the photo filename on bootcamp id.
func (s *Store) SetBootcampPhoto(ctx context.Context, id, photo string) error {
	res, err := s.bootcamps.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"photo": photo, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteBootcamp removes bootcamp id and then its courses. Without a
// replica set there is no transaction; orphaned courses left by a failure
// between the two steps are unreachable through the API.
func (s *Store) DeleteBootcamp(ctx context.Context, id string) error {
	res, err := s.bootcamps.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	_, err = s.courses.DeleteMany(ctx, bson.M{"bootcamp": id})
	return err
}

// BootcampsWithin returns bootcamps whose location lies inside c.
func (s *Store) BootcampsWithin(ctx context.Context, c geo.Circle) ([]domain.Bootcamp, error) {
	cur, err := s.bootcamps.Find(ctx, radiusFilter(c))
	if err != nil {
		return nil, err
	}
	return decodeBootcamps(ctx, cur)
}
