package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidIdentifier is returned when an external string identifier is not
// a well-formed ObjectID hex string. Callers can detect it with errors.Is.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// The typed IDs below are the single conversion boundary between the external
// identifier form (24-character hex string, used in URLs and JSON) and the
// store's native form (primitive.ObjectID, used in every storage operation).
// Parsing is the only way to obtain an ID from a string, so a malformed
// identifier can never travel past the facade.

// UserID is a typed ID for users
type UserID struct {
	oid primitive.ObjectID
}

func NewUserID() UserID {
	return UserID{oid: primitive.NewObjectID()}
}

func NewUserIDFromObjectID(oid primitive.ObjectID) UserID {
	return UserID{oid: oid}
}

func ParseUserID(s string) (UserID, error) {
	oid, err := parseObjectID(s)
	if err != nil {
		return UserID{}, fmt.Errorf("user ID: %w", err)
	}
	return UserID{oid: oid}, nil
}

func (u UserID) ObjectID() primitive.ObjectID { return u.oid }
func (u UserID) String() string               { return u.oid.Hex() }
func (u UserID) IsZero() bool                 { return u.oid.IsZero() }

func (u UserID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.oid.Hex())
}

func (u *UserID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &u.oid)
}

func (u UserID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(u.oid)
}

func (u *UserID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	return bson.UnmarshalValue(t, data, &u.oid)
}

// PlantID is a typed ID for plants
type PlantID struct {
	oid primitive.ObjectID
}

func NewPlantID() PlantID {
	return PlantID{oid: primitive.NewObjectID()}
}

func NewPlantIDFromObjectID(oid primitive.ObjectID) PlantID {
	return PlantID{oid: oid}
}

func ParsePlantID(s string) (PlantID, error) {
	oid, err := parseObjectID(s)
	if err != nil {
		return PlantID{}, fmt.Errorf("plant ID: %w", err)
	}
	return PlantID{oid: oid}, nil
}

func (p PlantID) ObjectID() primitive.ObjectID { return p.oid }
func (p PlantID) String() string               { return p.oid.Hex() }
func (p PlantID) IsZero() bool                 { return p.oid.IsZero() }

func (p PlantID) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.oid.Hex())
}

func (p *PlantID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &p.oid)
}

func (p PlantID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(p.oid)
}

func (p *PlantID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	return bson.UnmarshalValue(t, data, &p.oid)
}

// NoteID is a typed ID for notes
type NoteID struct {
	oid primitive.ObjectID
}

func NewNoteID() NoteID {
	return NoteID{oid: primitive.NewObjectID()}
}

func NewNoteIDFromObjectID(oid primitive.ObjectID) NoteID {
	return NoteID{oid: oid}
}

func ParseNoteID(s string) (NoteID, error) {
	oid, err := parseObjectID(s)
	if err != nil {
		return NoteID{}, fmt.Errorf("note ID: %w", err)
	}
	return NoteID{oid: oid}, nil
}

func (n NoteID) ObjectID() primitive.ObjectID { return n.oid }
func (n NoteID) String() string               { return n.oid.Hex() }
func (n NoteID) IsZero() bool                 { return n.oid.IsZero() }

func (n NoteID) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.oid.Hex())
}

func (n *NoteID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, &n.oid)
}

func (n NoteID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(n.oid)
}

func (n *NoteID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	return bson.UnmarshalValue(t, data, &n.oid)
}

// Helper functions

func parseObjectID(s string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	return oid, nil
}

// unmarshalJSONID decodes an external hex identifier out of a JSON string.
func unmarshalJSONID(data []byte, target *primitive.ObjectID) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	oid, err := parseObjectID(s)
	if err != nil {
		return err
	}
	*target = oid
	return nil
}
