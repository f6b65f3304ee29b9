package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/plantjournal/plantjournal/pkg/models"
	"github.com/plantjournal/plantjournal/pkg/store/document"
)

// Journal implements Store over any document backend. All identifier
// conversion between external strings and native ObjectIDs happens here, in
// the typed IDs; the document layer below only ever sees native form.
type Journal struct {
	docs document.Store
	log  zerolog.Logger

	onMutation func(Mutation)
	now        func() time.Time
}

var _ Store = (*Journal)(nil)

// NewJournal creates the facade over the given backend.
func NewJournal(docs document.Store, log zerolog.Logger) *Journal {
	return &Journal{
		docs: docs,
		log:  log,
		now:  time.Now,
	}
}

// OnMutation registers a hook invoked after each committed entity change.
// Must be set before the journal is shared across goroutines.
func (j *Journal) OnMutation(fn func(Mutation)) {
	j.onMutation = fn
}

func (j *Journal) publish(collection string, action Action, id string) {
	if j.onMutation != nil {
		j.onMutation(Mutation{Collection: collection, Action: action, ID: id})
	}
}

// Close releases the underlying backend.
func (j *Journal) Close(ctx context.Context) error {
	return j.docs.Close(ctx)
}

// --- users ---

// FindOrCreateFacebookUser looks the user up by provider id and creates one
// from the full profile when none exists. More than one match means earlier
// writes raced; the first is returned and the condition is logged, not
// surfaced.
func (j *Journal) FindOrCreateFacebookUser(ctx context.Context, profile models.FacebookProfile) (*models.User, error) {
	if profile.ID == "" {
		return nil, &ValidationError{Entity: "user", Reason: "facebook profile has no id"}
	}

	docs, err := j.docs.Find(ctx, models.UserCollection,
		document.NewFilter().Eq("facebook.id", profile.ID), nil)
	if err != nil {
		return nil, err
	}
	if len(docs) > 0 {
		if len(docs) > 1 {
			j.log.Warn().
				Str("facebookId", profile.ID).
				Int("count", len(docs)).
				Msg("multiple users share one facebook id; returning the first")
		}
		var user models.User
		if err := fromDocument(docs[0], &user); err != nil {
			return nil, err
		}
		return &user, nil
	}

	user := &models.User{
		ID:        models.NewUserID(),
		Facebook:  profile,
		CreatedAt: j.now().UTC(),
	}
	doc, err := toDocument(user)
	if err != nil {
		return nil, err
	}
	if _, err := j.docs.InsertOne(ctx, models.UserCollection, doc); err != nil {
		return nil, err
	}
	j.publish(models.UserCollection, ActionCreated, user.ID.String())
	return user, nil
}

func (j *Journal) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	docs, err := j.docs.Find(ctx, models.UserCollection, document.ByID(id.ObjectID()), nil)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var user models.User
	if err := fromDocument(docs[0], &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// --- plants ---

// CreatePlant validates ownership before any write, mints the identifier
// when absent and stamps the timestamps.
func (j *Journal) CreatePlant(ctx context.Context, plant *models.Plant) error {
	if plant.UserID.IsZero() {
		return &ValidationError{Entity: "plant", Reason: "userId is required"}
	}
	if plant.ID.IsZero() {
		plant.ID = models.NewPlantID()
	}
	now := j.now().UTC()
	plant.CreatedAt = now
	plant.UpdatedAt = now

	doc, err := toDocument(plant)
	if err != nil {
		return err
	}
	if _, err := j.docs.InsertOne(ctx, models.PlantCollection, doc); err != nil {
		return err
	}
	j.publish(models.PlantCollection, ActionCreated, plant.ID.String())
	return nil
}

// GetPlant returns the plant with its referencing notes attached, or
// (nil, nil) when it does not exist.
func (j *Journal) GetPlant(ctx context.Context, id models.PlantID) (*models.Plant, error) {
	docs, err := j.docs.Find(ctx, models.PlantCollection, document.ByID(id.ObjectID()), nil)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var plant models.Plant
	if err := fromDocument(docs[0], &plant); err != nil {
		return nil, err
	}

	notes, err := j.ListNotes(ctx, id)
	if err != nil {
		return nil, err
	}
	plant.Notes = notes
	return &plant, nil
}

func (j *Journal) UpdatePlant(ctx context.Context, plant *models.Plant) error {
	if plant.ID.IsZero() {
		return &ValidationError{Entity: "plant", Reason: "id is required"}
	}
	if plant.UserID.IsZero() {
		return &ValidationError{Entity: "plant", Reason: "userId is required"}
	}
	plant.UpdatedAt = j.now().UTC()

	doc, err := toDocument(plant)
	if err != nil {
		return err
	}
	matched, err := j.docs.ReplaceOne(ctx, models.PlantCollection, plant.ID.ObjectID(), doc)
	if err != nil {
		return err
	}
	if matched == 0 {
		return &document.WriteError{
			Collection: models.PlantCollection,
			Err:        fmt.Errorf("no plant with id %s", plant.ID),
		}
	}
	j.publish(models.PlantCollection, ActionUpdated, plant.ID.String())
	return nil
}

func (j *Journal) ListPlants(ctx context.Context, userID models.UserID) ([]*models.Plant, error) {
	docs, err := j.docs.Find(ctx, models.PlantCollection,
		document.NewFilter().Eq("userId", userID.ObjectID()),
		&document.FindOptions{Sort: []document.SortField{{Field: "name", Order: document.Asc}}})
	if err != nil {
		return nil, err
	}
	plants := make([]*models.Plant, 0, len(docs))
	for _, doc := range docs {
		var plant models.Plant
		if err := fromDocument(doc, &plant); err != nil {
			return nil, err
		}
		plants = append(plants, &plant)
	}
	return plants, nil
}

// DeletePlant removes the plant and repairs every note that references it,
// as a strict five-stage sequence. Any stage error aborts the remainder and
// leaves earlier stages committed; there is no rollback. The returned count
// reflects only the plant record itself.
func (j *Journal) DeletePlant(ctx context.Context, id models.PlantID, userID models.UserID) (int64, error) {
	notes, err := j.notesReferencing(ctx, id, userID)
	if err != nil {
		return 0, err
	}

	single, multi := partitionNotes(notes, id)

	if err := j.deleteNotes(ctx, single); err != nil {
		return 0, err
	}
	if err := j.detachPlant(ctx, multi, id); err != nil {
		return 0, err
	}

	return j.deletePlantRecord(ctx, id, userID)
}

// notesReferencing is stage one: every note of the owner whose plantIds
// contains the plant.
func (j *Journal) notesReferencing(ctx context.Context, id models.PlantID, userID models.UserID) ([]*models.Note, error) {
	docs, err := j.docs.Find(ctx, models.NoteCollection,
		document.NewFilter().
			Contains("plantIds", id.ObjectID()).
			Eq("userId", userID.ObjectID()),
		nil)
	if err != nil {
		return nil, err
	}
	notes := make([]*models.Note, 0, len(docs))
	for _, doc := range docs {
		var note models.Note
		if err := fromDocument(doc, &note); err != nil {
			return nil, err
		}
		notes = append(notes, &note)
	}
	return notes, nil
}

// partitionNotes is stage two: notes that reference only the doomed plant go
// to the delete batch, the rest keep living with one reference fewer. The
// decision is made here, at partition time, regardless of later stages.
func partitionNotes(notes []*models.Note, id models.PlantID) (single, multi []*models.Note) {
	for _, note := range notes {
		if len(note.WithoutPlant(id)) == 0 {
			single = append(single, note)
		} else {
			multi = append(multi, note)
		}
	}
	return single, multi
}

// deleteNotes is stage three: one batch delete over the single-plant notes.
func (j *Journal) deleteNotes(ctx context.Context, notes []*models.Note) error {
	if len(notes) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(notes))
	for _, note := range notes {
		ids = append(ids, note.ID.ObjectID())
	}
	if _, err := j.docs.DeleteMany(ctx, models.NoteCollection,
		document.NewFilter().In("_id", ids)); err != nil {
		return err
	}
	for _, note := range notes {
		j.publish(models.NoteCollection, ActionDeleted, note.ID.String())
	}
	return nil
}

// detachPlant is stage four: rewrite each multi-plant note without the doomed
// plant. Items are persisted one by one; the first failure aborts.
func (j *Journal) detachPlant(ctx context.Context, notes []*models.Note, id models.PlantID) error {
	for _, note := range notes {
		note.PlantIDs = note.WithoutPlant(id)
		note.UpdatedAt = j.now().UTC()

		doc, err := toDocument(note)
		if err != nil {
			return err
		}
		if _, err := j.docs.ReplaceOne(ctx, models.NoteCollection, note.ID.ObjectID(), doc); err != nil {
			return err
		}
		j.publish(models.NoteCollection, ActionUpdated, note.ID.String())
	}
	return nil
}

// deletePlantRecord is stage five: delete the plant itself, re-checking
// ownership in the filter. Its count is the operation's result.
func (j *Journal) deletePlantRecord(ctx context.Context, id models.PlantID, userID models.UserID) (int64, error) {
	count, err := j.docs.DeleteMany(ctx, models.PlantCollection,
		document.NewFilter().
			Eq("_id", id.ObjectID()).
			Eq("userId", userID.ObjectID()))
	if err != nil {
		return 0, err
	}
	if count > 0 {
		j.publish(models.PlantCollection, ActionDeleted, id.String())
	}
	return count, nil
}

// --- notes ---

func (j *Journal) CreateNote(ctx context.Context, note *models.Note) error {
	if note.UserID.IsZero() {
		return &ValidationError{Entity: "note", Reason: "userId is required"}
	}
	if len(note.PlantIDs) == 0 {
		return &ValidationError{Entity: "note", Reason: "plantIds must not be empty"}
	}
	if note.ID.IsZero() {
		note.ID = models.NewNoteID()
	}
	now := j.now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	doc, err := toDocument(note)
	if err != nil {
		return err
	}
	if _, err := j.docs.InsertOne(ctx, models.NoteCollection, doc); err != nil {
		return err
	}
	j.publish(models.NoteCollection, ActionCreated, note.ID.String())
	return nil
}

func (j *Journal) GetNote(ctx context.Context, id models.NoteID) (*models.Note, error) {
	docs, err := j.docs.Find(ctx, models.NoteCollection, document.ByID(id.ObjectID()), nil)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var note models.Note
	if err := fromDocument(docs[0], &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (j *Journal) UpdateNote(ctx context.Context, note *models.Note) error {
	if note.ID.IsZero() {
		return &ValidationError{Entity: "note", Reason: "id is required"}
	}
	if len(note.PlantIDs) == 0 {
		return &ValidationError{Entity: "note", Reason: "plantIds must not be empty"}
	}
	note.UpdatedAt = j.now().UTC()

	doc, err := toDocument(note)
	if err != nil {
		return err
	}
	matched, err := j.docs.ReplaceOne(ctx, models.NoteCollection, note.ID.ObjectID(), doc)
	if err != nil {
		return err
	}
	if matched == 0 {
		return &document.WriteError{
			Collection: models.NoteCollection,
			Err:        fmt.Errorf("no note with id %s", note.ID),
		}
	}
	j.publish(models.NoteCollection, ActionUpdated, note.ID.String())
	return nil
}

// DeleteNote removes one note; deleting an absent note is a no-op.
func (j *Journal) DeleteNote(ctx context.Context, id models.NoteID) error {
	count, err := j.docs.DeleteMany(ctx, models.NoteCollection, document.ByID(id.ObjectID()))
	if err != nil {
		return err
	}
	if count > 0 {
		j.publish(models.NoteCollection, ActionDeleted, id.String())
	}
	return nil
}

// ListNotes returns the notes referencing a plant, oldest first.
func (j *Journal) ListNotes(ctx context.Context, plantID models.PlantID) ([]*models.Note, error) {
	docs, err := j.docs.Find(ctx, models.NoteCollection,
		document.NewFilter().Contains("plantIds", plantID.ObjectID()),
		&document.FindOptions{Sort: []document.SortField{{Field: "date", Order: document.Asc}}})
	if err != nil {
		return nil, err
	}
	notes := make([]*models.Note, 0, len(docs))
	for _, doc := range docs {
		var note models.Note
		if err := fromDocument(doc, &note); err != nil {
			return nil, err
		}
		notes = append(notes, &note)
	}
	return notes, nil
}
