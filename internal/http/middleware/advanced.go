// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements "advanced results" for list endpoints: it parses the
// filter/select/sort/page/limit query, runs the listing and stores the page
// in the Gin context. The list handler then returns it verbatim.
//
//	GET /api/v1/bootcamps?careers[in]=Business,UI/UX&averageCost[lte]=10000&select=name,careers&sort=-averageCost&page=2&limit=5
package middleware

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bootcamp-backend/internal/apperr"
	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

const ctxKeyAdvanced = "advancedResults"

// Results is one page of a listing. Data holds the (possibly projected) items.
type Results struct {
	Count      int
	Pagination domain.Pagination
	Data       any
}

// ListFunc fetches one page and the total number of matches.
type ListFunc[T any] func(ctx context.Context, q domain.ListQuery) ([]T, int64, error)

// AdvancedResults parses the list query against fields, calls list and
// stores the page for AdvancedResultsFrom. Query or list failures are
// forwarded and abort the chain.
func AdvancedResults[T any](fields map[string]domain.Field, list ListFunc[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := domain.ParseListQuery(c.Request.URL.Query(), fields)
		if err != nil {
			_ = c.Error(apperr.From(err))
			c.Abort()
			return
		}
		items, total, err := list(c.Request.Context(), q)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if items == nil {
			items = []T{}
		}

		var data any = items
		if len(q.Select) > 0 {
			if data, err = project(items, q.Select); err != nil {
				_ = c.Error(err)
				c.Abort()
				return
			}
		}
		c.Set(ctxKeyAdvanced, Results{
			Count:      len(items),
			Pagination: domain.Paginate(q, total),
			Data:       data,
		})
		c.Next()
	}
}

// AdvancedResultsFrom returns the page stored by AdvancedResults.
func AdvancedResultsFrom(c *gin.Context) (Results, bool) {
	v, ok := c.Get(ctxKeyAdvanced)
	if !ok {
		return Results{}, false
	}
	r, ok := v.(Results)
	return r, ok
}

// project keeps only the selected JSON fields (plus id) of each item. A
// dotted selection such as "location.city" keeps its top-level object.
func project[T any](items []T, selected []string) ([]map[string]json.RawMessage, error) {
	keep := map[string]struct{}{"id": {}}
	for _, f := range selected {
		top, _, _ := strings.Cut(f, ".")
		keep[top] = struct{}{}
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	var all []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}
	for _, m := range all {
		for k := range m {
			if _, ok := keep[k]; !ok {
				delete(m, k)
			}
		}
	}
	return all, nil
}
