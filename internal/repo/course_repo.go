package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

// ListCourses returns one page of courses matching q and the total count.
func ListCourses(ctx context.Context, db *gorm.DB, q domain.ListQuery) ([]domain.Course, int64, error) {
	return list[domain.Course](db.WithContext(ctx), q)
}

// GetCourse fetches a course by id or returns ErrNotFound.
func GetCourse(ctx context.Context, db *gorm.DB, id string) (*domain.Course, error) {
	var c domain.Course
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// CreateCourse inserts c under its bootcamp.
func CreateCourse(ctx context.Context, db *gorm.DB, c *domain.Course) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = domain.NewID()
	}
	c.CreatedAt, c.UpdatedAt = now, now
	return db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

// UpdateCourse overwrites every mutable column of c.
func UpdateCourse(ctx context.Context, db *gorm.DB, c *domain.Course) error {
	c.UpdatedAt = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(c).
		Select("*").
		Omit("id", "created_at", "bootcamp_id", clause.Associations).
		Updates(c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCourse removes course id.
func DeleteCourse(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Course{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
