package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// FieldKind describes how a filterable field's values are parsed.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindBool
	KindTime
	// KindList is a string array; eq/in match when any element matches.
	KindList
)

// Field maps a public (JSON) field name to its storage names.
type Field struct {
	Kind   FieldKind
	Column string // SQL column
	Doc    string // document path
}

// BootcampFields lists the bootcamp fields usable in filter, sort and select.
var BootcampFields = map[string]Field{
	"id":               {KindString, "id", "_id"},
	"name":             {KindString, "name", "name"},
	"slug":             {KindString, "slug", "slug"},
	"description":      {KindString, "description", "description"},
	"website":          {KindString, "website", "website"},
	"phone":            {KindString, "phone", "phone"},
	"email":            {KindString, "email", "email"},
	"address":          {KindString, "address", "address"},
	"location":         {KindString, "", "location"},
	"location.city":    {KindString, "location_city", "location.city"},
	"location.state":   {KindString, "location_state", "location.state"},
	"location.zipcode": {KindString, "location_zipcode", "location.zipcode"},
	"location.country": {KindString, "location_country", "location.country"},
	"careers":          {KindList, "careers", "careers"},
	"averageRating":    {KindNumber, "average_rating", "averageRating"},
	"averageCost":      {KindNumber, "average_cost", "averageCost"},
	"photo":            {KindString, "photo", "photo"},
	"housing":          {KindBool, "housing", "housing"},
	"jobAssistance":    {KindBool, "job_assistance", "jobAssistance"},
	"jobGuarantee":     {KindBool, "job_guarantee", "jobGuarantee"},
	"acceptGi":         {KindBool, "accept_gi", "acceptGi"},
	"user":             {KindString, "user_id", "user"},
	"createdAt":        {KindTime, "created_at", "createdAt"},
	"updatedAt":        {KindTime, "updated_at", "updatedAt"},
}

// CourseFields lists the course fields usable in filter, sort and select.
var CourseFields = map[string]Field{
	"id":                   {KindString, "id", "_id"},
	"title":                {KindString, "title", "title"},
	"description":          {KindString, "description", "description"},
	"weeks":                {KindNumber, "weeks", "weeks"},
	"tuition":              {KindNumber, "tuition", "tuition"},
	"minimumSkill":         {KindString, "minimum_skill", "minimumSkill"},
	"scholarshipAvailable": {KindBool, "scholarship_available", "scholarshipAvailable"},
	"bootcamp":             {KindString, "bootcamp_id", "bootcamp"},
	"user":                 {KindString, "user_id", "user"},
	"createdAt":            {KindTime, "created_at", "createdAt"},
	"updatedAt":            {KindTime, "updated_at", "updatedAt"},
}

// Op is a filter comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

// Filter is one "field[op]=value" constraint. Values holds the typed value
// (string, float64, bool); it has several entries only for OpIn.
type Filter struct {
	Field  string
	Spec   Field
	Op     Op
	Values []any
}

// SortField orders results by Field, descending when Desc is set.
type SortField struct {
	Field string
	Spec  Field
	Desc  bool
}

// Default paging.
const (
	DefaultPage  = 1
	DefaultLimit = 25
	MaxLimit     = 100
)

// ListQuery is the parsed "advanced results" request: filters, projection,
// ordering and paging.
type ListQuery struct {
	Filters []Filter
	Select  []string
	Sort    []SortField
	Page    int
	Limit   int
}

// Offset returns the number of rows to skip for the current page.
func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }

// Where returns a copy of q with an extra equality filter. Used to scope a
// listing to a parent (courses of one bootcamp).
func (q ListQuery) Where(field string, spec Field, value any) ListQuery {
	out := q
	out.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Spec: spec, Op: OpEq, Values: []any{value}})
	return out
}

// NewListQuery returns a query with default paging and newest-first order.
func NewListQuery(fields map[string]Field) ListQuery {
	q := ListQuery{Page: DefaultPage, Limit: DefaultLimit}
	if spec, ok := fields["createdAt"]; ok {
		q.Sort = []SortField{{Field: "createdAt", Spec: spec, Desc: true}}
	}
	return q
}

var filterKeyRE = regexp.MustCompile(`^([A-Za-z][A-Za-z.]*)(?:\[(eq|gt|gte|lt|lte|in)\])?$`)

// ParseListQuery builds a ListQuery from URL query values. Reserved keys are
// select, sort, page and limit; every other key naming a known field becomes
// a filter. Unknown keys are ignored. Values that do not parse for the
// field's kind fail with ErrInvalidQuery.
func ParseListQuery(v url.Values, fields map[string]Field) (ListQuery, error) {
	q := NewListQuery(fields)

	if s := strings.TrimSpace(v.Get("select")); s != "" {
		for _, f := range splitList(s) {
			if _, ok := fields[f]; ok {
				q.Select = append(q.Select, f)
			}
		}
	}

	if s := strings.TrimSpace(v.Get("sort")); s != "" {
		var sorts []SortField
		for _, f := range splitList(s) {
			desc := strings.HasPrefix(f, "-")
			name := strings.TrimPrefix(f, "-")
			spec, ok := fields[name]
			if !ok || (spec.Column == "" && spec.Doc == "") {
				continue
			}
			sorts = append(sorts, SortField{Field: name, Spec: spec, Desc: desc})
		}
		if len(sorts) > 0 {
			q.Sort = sorts
		}
	}

	if s := v.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return q, fmt.Errorf("%w: page must be a positive integer", ErrInvalidQuery)
		}
		q.Page = n
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return q, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidQuery)
		}
		q.Limit = min(n, MaxLimit)
	}

	for key, vals := range v {
		switch key {
		case "select", "sort", "page", "limit":
			continue
		}
		m := filterKeyRE.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		spec, ok := fields[m[1]]
		if !ok || spec.Kind == KindTime || (spec.Column == "" && spec.Doc == "") {
			continue
		}
		op := Op(m[2])
		if op == "" {
			op = OpEq
		}
		for _, raw := range vals {
			f, err := parseFilter(m[1], spec, op, raw)
			if err != nil {
				return q, err
			}
			q.Filters = append(q.Filters, f)
		}
	}
	return q, nil
}

func parseFilter(name string, spec Field, op Op, raw string) (Filter, error) {
	f := Filter{Field: name, Spec: spec, Op: op}
	parts := []string{raw}
	if op == OpIn {
		parts = splitList(raw)
	}
	if spec.Kind != KindNumber && (op == OpGt || op == OpGte || op == OpLt || op == OpLte) {
		return f, fmt.Errorf("%w: %s does not support %s", ErrInvalidQuery, name, op)
	}
	for _, p := range parts {
		switch spec.Kind {
		case KindNumber:
			n, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return f, fmt.Errorf("%w: %s must be a number", ErrInvalidQuery, name)
			}
			f.Values = append(f.Values, n)
		case KindBool:
			b, err := strconv.ParseBool(p)
			if err != nil {
				return f, fmt.Errorf("%w: %s must be true or false", ErrInvalidQuery, name)
			}
			f.Values = append(f.Values, b)
		default:
			f.Values = append(f.Values, p)
		}
	}
	if len(f.Values) == 0 {
		return f, fmt.Errorf("%w: %s needs a value", ErrInvalidQuery, name)
	}
	return f, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Pagination links to the neighbouring pages of a listing.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// PageRef identifies one page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Paginate computes the neighbouring pages of q given the total row count.
func Paginate(q ListQuery, total int64) Pagination {
	var p Pagination
	end := int64(q.Page * q.Limit)
	if end < total {
		p.Next = &PageRef{Page: q.Page + 1, Limit: q.Limit}
	}
	if q.Offset() > 0 {
		p.Prev = &PageRef{Page: q.Page - 1, Limit: q.Limit}
	}
	return p
}
