package domain

import (
	"errors"
	"net/url"
	"testing"
)

func TestParseListQuery_Defaults(t *testing.T) {
	q, err := ParseListQuery(url.Values{}, BootcampFields)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if q.Page != 1 || q.Limit != 25 || q.Offset() != 0 {
		t.Fatalf("paging = %d/%d", q.Page, q.Limit)
	}
	if len(q.Sort) != 1 || q.Sort[0].Field != "createdAt" || !q.Sort[0].Desc {
		t.Fatalf("default sort = %+v", q.Sort)
	}
}

func TestParseListQuery_FiltersSelectSort(t *testing.T) {
	v, _ := url.ParseQuery("averageCost[lte]=10000&housing=true&careers[in]=Business,UI/UX&location.state=MA&select=name,description,bogus&sort=name,-averageRating&page=2&limit=500&unknown=1")
	q, err := ParseListQuery(v, BootcampFields)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if q.Page != 2 || q.Limit != MaxLimit || q.Offset() != MaxLimit {
		t.Fatalf("paging = %d/%d", q.Page, q.Limit)
	}
	if len(q.Select) != 2 || q.Select[0] != "name" || q.Select[1] != "description" {
		t.Fatalf("select = %v", q.Select)
	}
	if len(q.Sort) != 2 || q.Sort[0].Field != "name" || q.Sort[0].Desc || !q.Sort[1].Desc {
		t.Fatalf("sort = %+v", q.Sort)
	}

	byField := map[string]Filter{}
	for _, f := range q.Filters {
		byField[f.Field] = f
	}
	if len(byField) != 4 {
		t.Fatalf("filters = %+v", q.Filters)
	}
	if f := byField["averageCost"]; f.Op != OpLte || f.Values[0] != 10000.0 {
		t.Fatalf("averageCost filter = %+v", f)
	}
	if f := byField["housing"]; f.Op != OpEq || f.Values[0] != true {
		t.Fatalf("housing filter = %+v", f)
	}
	if f := byField["careers"]; f.Op != OpIn || len(f.Values) != 2 {
		t.Fatalf("careers filter = %+v", f)
	}
	if f := byField["location.state"]; f.Spec.Column != "location_state" || f.Values[0] != "MA" {
		t.Fatalf("state filter = %+v", f)
	}
}

func TestParseListQuery_Errors(t *testing.T) {
	bad := []string{
		"page=0",
		"limit=abc",
		"averageCost[gt]=cheap",
		"housing=maybe",
		"name[gt]=a",
	}
	for _, raw := range bad {
		v, _ := url.ParseQuery(raw)
		if _, err := ParseListQuery(v, BootcampFields); !errors.Is(err, ErrInvalidQuery) {
			t.Fatalf("%s: err = %v; want ErrInvalidQuery", raw, err)
		}
	}
}

func TestWhereDoesNotAlias(t *testing.T) {
	base := NewListQuery(CourseFields)
	base.Filters = make([]Filter, 0, 4)
	a := base.Where("bootcamp", CourseFields["bootcamp"], "b1")
	b := base.Where("bootcamp", CourseFields["bootcamp"], "b2")
	if a.Filters[0].Values[0] != "b1" || b.Filters[0].Values[0] != "b2" {
		t.Fatalf("Where aliased filters: %v %v", a.Filters, b.Filters)
	}
	if len(base.Filters) != 0 {
		t.Fatalf("base mutated")
	}
}

func TestPaginate(t *testing.T) {
	q := ListQuery{Page: 1, Limit: 10}
	p := Paginate(q, 25)
	if p.Next == nil || p.Next.Page != 2 || p.Prev != nil {
		t.Fatalf("page 1: %+v", p)
	}
	q.Page = 3
	p = Paginate(q, 25)
	if p.Next != nil || p.Prev == nil || p.Prev.Page != 2 {
		t.Fatalf("page 3: %+v", p)
	}
}
