// Package mongodb implements the document store over the official MongoDB
// driver and owns the process-wide connection.
package mongodb

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plantjournal/plantjournal/pkg/store/document"
)

// ConnManager lazily establishes one shared *mongo.Client on first use and
// memoizes the outcome, success or failure. A failed first attempt is not
// retried: every later call observes the same ConnectionError. The client
// itself pools connections and is safe for concurrent use.
type ConnManager struct {
	uri string

	once   sync.Once
	client *mongo.Client
	err    error
}

// NewConnManager prepares a manager for the given connection string. No
// connection is attempted until Client is called.
func NewConnManager(uri string) *ConnManager {
	return &ConnManager{uri: uri}
}

// Client returns the shared client, connecting on first call. The context
// bounds only the initial connection attempt.
func (m *ConnManager) Client(ctx context.Context) (*mongo.Client, error) {
	m.once.Do(func() {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.uri))
		if err != nil {
			m.err = &document.ConnectionError{Err: err}
			return
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			m.err = &document.ConnectionError{Err: err}
			return
		}
		m.client = client
	})
	return m.client, m.err
}

// Close disconnects the shared client if one was established.
func (m *ConnManager) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
