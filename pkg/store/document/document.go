// Package document defines the generic document-store contract the journal
// facade is built on: named collections of schemaless documents with four
// primitive operations (insert, find, replace, delete-many).
//
// Identifiers inside this layer are always in the store's native form
// (primitive.ObjectID under the "_id" key); conversion to and from the
// external string form happens above, in the facade's typed IDs.
package document

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is one schemaless record. The "_id" key, when present, holds the
// native identifier as a primitive.ObjectID.
type Document map[string]any

// Op is a filter operator. The set is intentionally small: it is exactly what
// the journal's entity workflows need, and each backend translates it to its
// native query form.
type Op string

const (
	// Eq matches documents whose field equals the value.
	Eq Op = "$eq"
	// In matches documents whose field equals any of the values in the
	// supplied slice.
	In Op = "$in"
	// Contains matches documents whose array field contains the value.
	Contains Op = "$contains"
)

// Cond is a single filter criterion.
type Cond struct {
	Field string
	Op    Op
	Value any
}

// Filter is a conjunction of conditions. An empty filter matches every
// document in the collection.
type Filter struct {
	Conds []Cond
}

// NewFilter creates an empty filter builder.
func NewFilter() *Filter {
	return &Filter{}
}

// Eq adds an equality condition. Multiple conditions combine with AND.
func (f *Filter) Eq(field string, value any) *Filter {
	f.Conds = append(f.Conds, Cond{Field: field, Op: Eq, Value: value})
	return f
}

// In adds a membership condition over the supplied values.
func (f *Filter) In(field string, values any) *Filter {
	f.Conds = append(f.Conds, Cond{Field: field, Op: In, Value: values})
	return f
}

// Contains adds an array-membership condition.
func (f *Filter) Contains(field string, value any) *Filter {
	f.Conds = append(f.Conds, Cond{Field: field, Op: Contains, Value: value})
	return f
}

// ByID is shorthand for a filter matching one document by native identifier.
func ByID(id primitive.ObjectID) *Filter {
	return NewFilter().Eq("_id", id)
}

// SortOrder follows the MongoDB convention: 1 ascending, -1 descending.
type SortOrder int

const (
	Asc  SortOrder = 1
	Desc SortOrder = -1
)

// SortField names a field to sort by and its direction.
type SortField struct {
	Field string
	Order SortOrder
}

// FindOptions carries optional ordering and bounds for Find.
type FindOptions struct {
	Sort  []SortField
	Limit int64
}

// Store is the backend-agnostic document store. Implementations exist for
// MongoDB and for an in-memory map used by tests and development runs.
//
// Every method respects the context's deadline. An empty Find result is not
// an error, and DeleteMany matching zero documents is not an error.
type Store interface {
	// InsertOne inserts one document and returns its native identifier.
	// When the document has no "_id", the backend mints one.
	InsertOne(ctx context.Context, collection string, doc Document) (primitive.ObjectID, error)

	// Find returns the ordered sequence of documents matching the filter.
	// opts may be nil.
	Find(ctx context.Context, collection string, filter *Filter, opts *FindOptions) ([]Document, error)

	// ReplaceOne replaces the document with the given identifier and
	// reports how many documents matched (zero or one).
	ReplaceOne(ctx context.Context, collection string, id primitive.ObjectID, doc Document) (int64, error)

	// DeleteMany deletes all documents matching the filter and reports the
	// count removed.
	DeleteMany(ctx context.Context, collection string, filter *Filter) (int64, error)

	// Close releases the backend's resources.
	Close(ctx context.Context) error
}
