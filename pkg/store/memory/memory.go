// Package memory implements the document store over in-process maps. It backs
// the facade tests and the -memory development mode, so it mirrors the MongoDB
// backend's observable behavior: minted ObjectIDs, array-contains matching,
// zero-match deletes reported as count 0.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/plantjournal/plantjournal/pkg/store/document"
)

// Store holds every collection in memory, guarded by one RWMutex. Documents
// are deep-copied on the way in and out so callers can never alias internal
// state.
type Store struct {
	mu   sync.RWMutex
	cols map[string]map[primitive.ObjectID]*record
	seq  uint64
}

// record pairs a stored document with its insertion sequence, which gives
// Find a stable default ordering.
type record struct {
	doc document.Document
	seq uint64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		cols: make(map[string]map[primitive.ObjectID]*record),
	}
}

var _ document.Store = (*Store)(nil)

func (s *Store) collection(name string) map[primitive.ObjectID]*record {
	col, ok := s.cols[name]
	if !ok {
		col = make(map[primitive.ObjectID]*record)
		s.cols[name] = col
	}
	return col
}

// InsertOne stores a copy of doc, minting an identifier when none is present.
func (s *Store) InsertOne(ctx context.Context, collection string, doc document.Document) (primitive.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return primitive.NilObjectID, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := doc["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
	}

	stored := copyDocument(doc)
	stored["_id"] = id

	s.seq++
	s.collection(collection)[id] = &record{doc: stored, seq: s.seq}
	return id, nil
}

// Find returns copies of every document matching the filter, in insertion
// order unless opts requests a sort.
func (s *Store) Find(ctx context.Context, collection string, filter *document.Filter, opts *document.FindOptions) ([]document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var matched []*record
	for _, rec := range s.cols[collection] {
		ok, err := matches(rec.doc, filter)
		if err != nil {
			s.mu.RUnlock()
			return nil, &document.ReadError{Collection: collection, Err: err}
		}
		if ok {
			matched = append(matched, rec)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	if opts != nil && len(opts.Sort) > 0 {
		sortRecords(matched, opts.Sort)
	}
	if opts != nil && opts.Limit > 0 && int64(len(matched)) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	out := make([]document.Document, 0, len(matched))
	for _, rec := range matched {
		out = append(out, copyDocument(rec.doc))
	}
	return out, nil
}

// ReplaceOne swaps the stored document for a copy of doc, preserving the
// identifier and the insertion order slot.
func (s *Store) ReplaceOne(ctx context.Context, collection string, id primitive.ObjectID, doc document.Document) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.cols[collection][id]
	if !ok {
		return 0, nil
	}

	stored := copyDocument(doc)
	stored["_id"] = id
	rec.doc = stored
	return 1, nil
}

// DeleteMany removes every matching document and reports the count.
func (s *Store) DeleteMany(ctx context.Context, collection string, filter *document.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	col := s.cols[collection]
	for id, rec := range col {
		ok, err := matches(rec.doc, filter)
		if err != nil {
			return count, &document.WriteError{Collection: collection, Err: err}
		}
		if ok {
			delete(col, id)
			count++
		}
	}
	return count, nil
}

// Close is a no-op; nothing to release.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// matches evaluates the filter conjunction against one document.
func matches(doc document.Document, filter *document.Filter) (bool, error) {
	if filter == nil {
		return true, nil
	}
	for _, cond := range filter.Conds {
		val, present := lookupField(doc, cond.Field)
		switch cond.Op {
		case document.Eq:
			if !present || !equalValues(val, cond.Value) {
				return false, nil
			}
		case document.In:
			if !present || !valueIn(val, cond.Value) {
				return false, nil
			}
		case document.Contains:
			if !present || !arrayContains(val, cond.Value) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported filter operator %q", cond.Op)
		}
	}
	return true, nil
}

// lookupField resolves a possibly dotted field path ("facebook.id") through
// nested sub-documents, the way MongoDB does.
func lookupField(doc document.Document, field string) (any, bool) {
	var cur any = doc
	for {
		i := strings.IndexByte(field, '.')
		key := field
		if i >= 0 {
			key = field[:i]
		}

		var val any
		var ok bool
		switch m := cur.(type) {
		case document.Document:
			val, ok = m[key]
		case map[string]any:
			val, ok = m[key]
		case primitive.M:
			val, ok = m[key]
		default:
			return nil, false
		}
		if !ok {
			return nil, false
		}
		if i < 0 {
			return val, true
		}
		cur = val
		field = field[i+1:]
	}
}

// equalValues compares stored and filter values, tolerating the few dynamic
// shapes BSON round-trips produce.
func equalValues(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
	}
	return reflect.DeepEqual(a, b)
}

// valueIn reports whether val equals any element of the candidates slice.
func valueIn(val, candidates any) bool {
	rv := reflect.ValueOf(candidates)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return equalValues(val, candidates)
	}
	for i := 0; i < rv.Len(); i++ {
		if equalValues(val, rv.Index(i).Interface()) {
			return true
		}
	}
	return false
}

// arrayContains reports whether the stored array field contains want. The
// stored value may be primitive.A, []any or a typed slice depending on how
// the document was built.
func arrayContains(stored, want any) bool {
	rv := reflect.ValueOf(stored)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return equalValues(stored, want)
	}
	for i := 0; i < rv.Len(); i++ {
		if equalValues(rv.Index(i).Interface(), want) {
			return true
		}
	}
	return false
}

func sortRecords(recs []*record, fields []document.SortField) {
	sort.SliceStable(recs, func(i, j int) bool {
		for _, f := range fields {
			c := compareValues(recs[i].doc[f.Field], recs[j].doc[f.Field])
			if c == 0 {
				continue
			}
			if f.Order == document.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareValues orders the value types the journal sorts on. Unknown or
// mismatched types compare as equal, which leaves insertion order intact.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			}
			return 0
		}
	case primitive.DateTime:
		if bv, ok := b.(primitive.DateTime); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case int32:
		if bv, ok := b.(int32); ok {
			return int(av - bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case primitive.ObjectID:
		if bv, ok := b.(primitive.ObjectID); ok {
			switch {
			case av.Hex() < bv.Hex():
				return -1
			case av.Hex() > bv.Hex():
				return 1
			}
			return 0
		}
	}
	return 0
}

// copyDocument deep-copies maps and slices so stored state never aliases
// caller state. Scalar values (ObjectID, time.Time, strings, numbers) are
// value types and copy by assignment.
func copyDocument(doc document.Document) document.Document {
	out := make(document.Document, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch tv := v.(type) {
	case document.Document:
		return copyDocument(tv)
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = copyValue(e)
		}
		return out
	case primitive.M:
		out := make(primitive.M, len(tv))
		for k, e := range tv {
			out[k] = copyValue(e)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = copyValue(e)
		}
		return out
	case primitive.A:
		out := make(primitive.A, len(tv))
		for i, e := range tv {
			out[i] = copyValue(e)
		}
		return out
	case []primitive.ObjectID:
		out := make([]primitive.ObjectID, len(tv))
		copy(out, tv)
		return out
	default:
		return v
	}
}
