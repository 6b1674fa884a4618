package repo

import (
	"cmp"
	"context"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/geo"
)

// ListBootcamps returns one page of bootcamps matching q and the total count.
func ListBootcamps(ctx context.Context, db *gorm.DB, q domain.ListQuery) ([]domain.Bootcamp, int64, error) {
	return list[domain.Bootcamp](db.WithContext(ctx), q)
}

// GetBootcamp fetches a bootcamp by id or returns ErrNotFound.
func GetBootcamp(ctx context.Context, db *gorm.DB, id string) (*domain.Bootcamp, error) {
	var b domain.Bootcamp
	if err := db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// CreateBootcamp inserts b, assigning ID and timestamps when unset. A taken
// name yields ErrDuplicate.
func CreateBootcamp(ctx context.Context, db *gorm.DB, b *domain.Bootcamp) error {
	now := time.Now().UTC()
	if b.ID == "" {
		b.ID = domain.NewID()
	}
	if b.Photo == "" {
		b.Photo = domain.DefaultPhoto
	}
	b.CreatedAt, b.UpdatedAt = now, now
	b.SyncGeoColumns()
	if err := db.WithContext(ctx).Create(b).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdateBootcamp overwrites every mutable column of b. It returns ErrNotFound
// when no row has b.ID.
func UpdateBootcamp(ctx context.Context, db *gorm.DB, b *domain.Bootcamp) error {
	b.UpdatedAt = time.Now().UTC()
	b.SyncGeoColumns()
	res := db.WithContext(ctx).
		Model(b).
		Select("*").
		Omit("id", "created_at").
		Updates(b)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetBootcampPhoto stores the photo filename on bootcamp id.
func SetBootcampPhoto(ctx context.Context, db *gorm.DB, id, photo string) error {
	res := db.WithContext(ctx).
		Model(&domain.Bootcamp{}).
		Where("id = ?", id).
		Updates(map[string]any{"photo": photo, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBootcamp removes bootcamp id together with its courses.
func DeleteBootcamp(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bootcamp_id = ?", id).Delete(&domain.Course{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Bootcamp{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// BootcampsWithin returns bootcamps whose location lies inside c, nearest
// first. The lat/lng index narrows candidates to c's bounding box; the
// spherical test is exact.
func BootcampsWithin(ctx context.Context, db *gorm.DB, c geo.Circle) ([]domain.Bootcamp, error) {
	box := c.Bounds()
	tx := db.WithContext(ctx).
		Where("lat IS NOT NULL AND lng IS NOT NULL").
		Where(clause.Gte{Column: clause.Column{Name: "lat"}, Value: box.MinLat}).
		Where(clause.Lte{Column: clause.Column{Name: "lat"}, Value: box.MaxLat})
	switch {
	case box.MinLng <= -180 && box.MaxLng >= 180:
	case box.Wraps():
		tx = tx.Where("lng >= ? OR lng <= ?", box.MinLng, box.MaxLng)
	default:
		tx = tx.Where("lng BETWEEN ? AND ?", box.MinLng, box.MaxLng)
	}

	var candidates []domain.Bootcamp
	if err := tx.Find(&candidates).Error; err != nil {
		return nil, err
	}

	out := candidates[:0]
	for _, b := range candidates {
		lat, lng, ok := b.Location.LatLng()
		if ok && c.Contains(lat, lng) {
			out = append(out, b)
		}
	}
	sortByDistance(out, c.Center)
	return out, nil
}

func sortByDistance(bs []domain.Bootcamp, center geo.Center) {
	dist := func(b domain.Bootcamp) float64 {
		lat, lng, _ := b.Location.LatLng()
		return geo.CentralAngle(center.Lat(), center.Lng(), lat, lng)
	}
	slices.SortStableFunc(bs, func(a, b domain.Bootcamp) int { return cmp.Compare(dist(a), dist(b)) })
}
