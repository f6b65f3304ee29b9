package store

import "fmt"

// ValidationError reports an entity that failed a precondition check before
// any storage operation was attempted.
type ValidationError struct {
	Entity string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Entity, e.Reason)
}
