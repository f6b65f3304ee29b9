package document

import "fmt"

// ConnectionError reports a failure to reach or establish the backend
// connection. It is never retried by this layer.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("document store connection: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ReadError reports a failed query against a collection.
type ReadError struct {
	Collection string
	Err        error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Collection, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed insert, replace or delete against a collection.
type WriteError struct {
	Collection string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Collection, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
