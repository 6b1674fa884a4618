package mongostore

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/geo"
)

var mongoOps = map[domain.Op]string{
	domain.OpGt:  "$gt",
	domain.OpGte: "$gte",
	domain.OpLt:  "$lt",
	domain.OpLte: "$lte",
	domain.OpIn:  "$in",
}

// buildFilter translates list filters into a query document. Several
// constraints on one path are combined with $and.
func buildFilter(filters []domain.Filter) bson.M {
	var clauses bson.A
	for _, f := range filters {
		path := f.Spec.Doc
		if path == "" || len(f.Values) == 0 {
			continue
		}
		var cond any
		switch op := f.Op; op {
		case domain.OpEq:
			// On an array field equality matches any element.
			cond = f.Values[0]
		case domain.OpIn:
			cond = bson.M{"$in": bson.A(f.Values)}
		default:
			cond = bson.M{mongoOps[op]: f.Values[0]}
		}
		clauses = append(clauses, bson.M{path: cond})
	}
	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0].(bson.M)
	}
	return bson.M{"$and": clauses}
}

// buildSort maps sort fields to a sort document with _id as tiebreaker.
func buildSort(sorts []domain.SortField) bson.D {
	out := make(bson.D, 0, len(sorts)+1)
	for _, s := range sorts {
		if s.Spec.Doc == "" || s.Spec.Doc == "_id" {
			continue
		}
		dir := 1
		if s.Desc {
			dir = -1
		}
		out = append(out, bson.E{Key: s.Spec.Doc, Value: dir})
	}
	return append(out, bson.E{Key: "_id", Value: 1})
}

func findOptions(q domain.ListQuery) *options.FindOptions {
	return options.Find().
		SetSort(buildSort(q.Sort)).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
}

// radiusFilter selects documents whose location lies in c. $centerSphere
// takes [[lng, lat], radians].
func radiusFilter(c geo.Circle) bson.M {
	return bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{c.Center.Lng(), c.Center.Lat()}, c.Radius},
			},
		},
	}
}
