// Package store is the application-facing data-access layer: typed entity
// operations over a backend-agnostic document store, including the cascading
// plant delete and the OAuth find-or-create workflow.
package store

import (
	"context"

	"github.com/plantjournal/plantjournal/pkg/models"
)

// Store is what the HTTP layer programs against. Get-style methods return
// (nil, nil) when the entity does not exist; absence is not an error.
type Store interface {
	// FindOrCreateFacebookUser returns the user owning the profile's
	// provider id, creating one on first sign-in. Idempotent per id.
	FindOrCreateFacebookUser(ctx context.Context, profile models.FacebookProfile) (*models.User, error)
	GetUser(ctx context.Context, id models.UserID) (*models.User, error)

	CreatePlant(ctx context.Context, plant *models.Plant) error
	// GetPlant attaches the plant's referencing notes before returning it.
	GetPlant(ctx context.Context, id models.PlantID) (*models.Plant, error)
	UpdatePlant(ctx context.Context, plant *models.Plant) error
	ListPlants(ctx context.Context, userID models.UserID) ([]*models.Plant, error)
	// DeletePlant runs the cascading delete and reports how many plant
	// records were removed (0 or 1).
	DeletePlant(ctx context.Context, id models.PlantID, userID models.UserID) (int64, error)

	CreateNote(ctx context.Context, note *models.Note) error
	GetNote(ctx context.Context, id models.NoteID) (*models.Note, error)
	UpdateNote(ctx context.Context, note *models.Note) error
	DeleteNote(ctx context.Context, id models.NoteID) error
	ListNotes(ctx context.Context, plantID models.PlantID) ([]*models.Note, error)

	Close(ctx context.Context) error
}
