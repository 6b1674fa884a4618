package repo

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

// applyFilters translates list filters into WHERE clauses. Column names come
// from the domain field whitelist and never from user input.
func applyFilters(tx *gorm.DB, filters []domain.Filter) *gorm.DB {
	for _, f := range filters {
		col := f.Spec.Column
		if col == "" {
			continue
		}
		if f.Spec.Kind == domain.KindList {
			// JSON array column: match when any element matches.
			tx = tx.Where(fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE json_each.value IN ?)", quote(col)), f.Values)
			continue
		}
		switch f.Op {
		case domain.OpIn:
			tx = tx.Where(clause.IN{Column: clause.Column{Name: col}, Values: f.Values})
		case domain.OpGt:
			tx = tx.Where(clause.Gt{Column: clause.Column{Name: col}, Value: f.Values[0]})
		case domain.OpGte:
			tx = tx.Where(clause.Gte{Column: clause.Column{Name: col}, Value: f.Values[0]})
		case domain.OpLt:
			tx = tx.Where(clause.Lt{Column: clause.Column{Name: col}, Value: f.Values[0]})
		case domain.OpLte:
			tx = tx.Where(clause.Lte{Column: clause.Column{Name: col}, Value: f.Values[0]})
		default:
			tx = tx.Where(clause.Eq{Column: clause.Column{Name: col}, Value: f.Values[0]})
		}
	}
	return tx
}

// applySort orders by the requested fields with id as a stable tiebreaker.
func applySort(tx *gorm.DB, sorts []domain.SortField) *gorm.DB {
	for _, s := range sorts {
		if s.Spec.Column == "" {
			continue
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Spec.Column}, Desc: s.Desc})
	}
	return tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
}

func quote(col string) string { return "`" + col + "`" }

// list runs q against model's table, returning one page and the total count.
func list[T any](tx *gorm.DB, q domain.ListQuery) ([]T, int64, error) {
	var zero T
	base := applyFilters(tx.Model(&zero), q.Filters).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	out := make([]T, 0, q.Limit)
	err := applySort(base, q.Sort).
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&out).Error
	return out, total, err
}
