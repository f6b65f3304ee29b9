package models

import (
	"time"
)

// Collection names as they exist in the document store.
const (
	UserCollection  = "user"
	PlantCollection = "plant"
	NoteCollection  = "note"
)

// FacebookProfile is the subset of an OAuth provider profile the journal
// keeps. The provider identifier is the lookup key for find-or-create;
// everything else is retained verbatim for display.
type FacebookProfile struct {
	ID          string `bson:"id" json:"id"`
	DisplayName string `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Email       string `bson:"email,omitempty" json:"email,omitempty"`
	PhotoURL    string `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
}

// User is an external identity record, created on first sign-in and never
// updated or deleted by this system.
type User struct {
	ID        UserID          `bson:"_id" json:"id"`
	Facebook  FacebookProfile `bson:"facebook" json:"facebook"`
	CreatedAt time.Time       `bson:"createdAt" json:"createdAt"`
}

// Plant is owned by exactly one user. UserID is a soft invariant: it must
// reference an existing user, but nothing in the store enforces that.
//
// Notes is populated only by the read-time join in the facade's GetPlant;
// it is never persisted with the plant document.
type Plant struct {
	ID           PlantID   `bson:"_id" json:"id"`
	UserID       UserID    `bson:"userId" json:"userId"`
	Name         string    `bson:"name" json:"name"`
	Species      string    `bson:"species,omitempty" json:"species,omitempty"`
	Location     string    `bson:"location,omitempty" json:"location,omitempty"`
	AcquiredDate time.Time `bson:"acquiredDate,omitempty" json:"acquiredDate,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`

	Notes []*Note `bson:"-" json:"notes,omitempty"`
}

// Note references one or more plants. PlantIDs is never empty in storage:
// the cascading plant delete routes a note that would lose its last plant
// reference to the delete path instead of persisting it empty.
type Note struct {
	ID        NoteID    `bson:"_id" json:"id"`
	UserID    UserID    `bson:"userId" json:"userId"`
	PlantIDs  []PlantID `bson:"plantIds" json:"plantIds"`
	Date      time.Time `bson:"date" json:"date"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	Metric    string    `bson:"metric,omitempty" json:"metric,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// References reports whether the note's PlantIDs contains id.
func (n *Note) References(id PlantID) bool {
	for _, pid := range n.PlantIDs {
		if pid == id {
			return true
		}
	}
	return false
}

// WithoutPlant returns a copy of PlantIDs with every occurrence of id removed.
func (n *Note) WithoutPlant(id PlantID) []PlantID {
	out := make([]PlantID, 0, len(n.PlantIDs))
	for _, pid := range n.PlantIDs {
		if pid != id {
			out = append(out, pid)
		}
	}
	return out
}
