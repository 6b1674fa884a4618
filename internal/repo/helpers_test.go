package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

// newRepoDB opens a private in-memory database with the full schema.
func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", domain.NewID()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedBootcamp(t *testing.T, db *gorm.DB, name string, lat, lng float64, mut ...func(*domain.Bootcamp)) *domain.Bootcamp {
	t.Helper()
	b := &domain.Bootcamp{
		Name:        name,
		Slug:        domain.Slugify(name),
		Description: "desc " + name,
		Address:     "somewhere",
		Location:    domain.NewPoint(lat, lng),
		Careers:     []string{"Web Development"},
		UserID:      "owner",
	}
	for _, m := range mut {
		m(b)
	}
	if err := CreateBootcamp(context.Background(), db, b); err != nil {
		t.Fatalf("seed bootcamp %q: %v", name, err)
	}
	// distinct created_at for deterministic default ordering
	time.Sleep(2 * time.Millisecond)
	return b
}
