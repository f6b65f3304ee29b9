package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/plantjournal/plantjournal/pkg/store/document"
)

// DefaultOpTimeout bounds each storage operation when the caller's context
// carries no tighter deadline.
const DefaultOpTimeout = 10 * time.Second

// Store implements the document store over one MongoDB database. The
// connection is established lazily through the ConnManager on the first
// operation.
type Store struct {
	conn      *ConnManager
	dbName    string
	opTimeout time.Duration
}

var _ document.Store = (*Store)(nil)

// NewStore creates a store over the named database.
func NewStore(conn *ConnManager, dbName string) *Store {
	return &Store{
		conn:      conn,
		dbName:    dbName,
		opTimeout: DefaultOpTimeout,
	}
}

func (s *Store) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	client, err := s.conn.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(s.dbName).Collection(name), nil
}

// opContext applies the default deadline unless the caller already set one.
func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *Store) InsertOne(ctx context.Context, collection string, doc document.Document) (primitive.ObjectID, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	col, err := s.collection(ctx, collection)
	if err != nil {
		return primitive.NilObjectID, err
	}
	res, err := col.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, &document.WriteError{Collection: collection, Err: err}
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, &document.WriteError{
			Collection: collection,
			Err:        fmt.Errorf("inserted id has type %T, want ObjectID", res.InsertedID),
		}
	}
	return id, nil
}

func (s *Store) Find(ctx context.Context, collection string, filter *document.Filter, opts *document.FindOptions) ([]document.Document, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	col, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	query, err := toBSONFilter(filter)
	if err != nil {
		return nil, &document.ReadError{Collection: collection, Err: err}
	}
	cursor, err := col.Find(ctx, query, toFindOptions(opts))
	if err != nil {
		return nil, &document.ReadError{Collection: collection, Err: err}
	}
	var docs []document.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &document.ReadError{Collection: collection, Err: err}
	}
	return docs, nil
}

func (s *Store) ReplaceOne(ctx context.Context, collection string, id primitive.ObjectID, doc document.Document) (int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	col, err := s.collection(ctx, collection)
	if err != nil {
		return 0, err
	}
	res, err := col.ReplaceOne(ctx, map[string]any{"_id": id}, doc)
	if err != nil {
		return 0, &document.WriteError{Collection: collection, Err: err}
	}
	return res.MatchedCount, nil
}

func (s *Store) DeleteMany(ctx context.Context, collection string, filter *document.Filter) (int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	col, err := s.collection(ctx, collection)
	if err != nil {
		return 0, err
	}
	query, err := toBSONFilter(filter)
	if err != nil {
		return 0, &document.WriteError{Collection: collection, Err: err}
	}
	res, err := col.DeleteMany(ctx, query)
	if err != nil {
		return 0, &document.WriteError{Collection: collection, Err: err}
	}
	return res.DeletedCount, nil
}

// Close disconnects the shared client.
func (s *Store) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}
