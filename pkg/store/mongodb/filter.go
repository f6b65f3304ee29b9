package mongodb

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plantjournal/plantjournal/pkg/store/document"
)

// toBSONFilter translates the generic filter to the driver's query form.
// Contains becomes plain equality because MongoDB matches a scalar against
// array fields by membership.
func toBSONFilter(f *document.Filter) (bson.M, error) {
	out := bson.M{}
	if f == nil {
		return out, nil
	}
	for _, cond := range f.Conds {
		switch cond.Op {
		case document.Eq, document.Contains:
			out[cond.Field] = cond.Value
		case document.In:
			out[cond.Field] = bson.M{"$in": cond.Value}
		default:
			return nil, fmt.Errorf("unsupported filter operator %q", cond.Op)
		}
	}
	return out, nil
}

func toFindOptions(opts *document.FindOptions) *options.FindOptions {
	fo := options.Find()
	if opts == nil {
		return fo
	}
	if len(opts.Sort) > 0 {
		sort := bson.D{}
		for _, f := range opts.Sort {
			sort = append(sort, bson.E{Key: f.Field, Value: int(f.Order)})
		}
		fo.SetSort(sort)
	}
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	return fo
}
