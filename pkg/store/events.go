package store

// Action names what happened to an entity.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Mutation describes one committed entity change. The Journal hands these to
// an optional hook after the storage operation succeeds; the live-update feed
// fans them out to connected browsers.
type Mutation struct {
	Collection string `json:"collection"`
	Action     Action `json:"action"`
	ID         string `json:"id"`
}
