package plantjournal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/plantjournal/plantjournal/pkg/models"
	"github.com/plantjournal/plantjournal/pkg/store"
)

// handleFacebookSignIn signs a user in from an OAuth provider profile,
// creating the account on first sign-in. Repeating the call with the same
// provider id returns the same user.
//
// HTTP Method: POST
// Endpoint: /api/auth/facebook
//
// Request body is the provider profile; "id" is required.
//
// Response:
//   - 200 OK: the existing or newly created user
//   - 400 Bad Request: malformed payload or missing provider id
//   - 500 Internal Server Error: storage failure
func (a *App) handleFacebookSignIn(w http.ResponseWriter, r *http.Request) {
	var profile models.FacebookProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ctx := r.Context()
	user, err := a.store.FindOrCreateFacebookUser(ctx, profile)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (a *App) handleGetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := models.ParseUserID(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx := r.Context()
	user, err := a.store.GetUser(ctx, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Plant handlers

func (a *App) handleCreatePlant(w http.ResponseWriter, r *http.Request) {
	var plant models.Plant
	if err := json.NewDecoder(r.Body).Decode(&plant); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ctx := r.Context()
	if err := a.store.CreatePlant(ctx, &plant); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, plant)
}

// handleGetPlant returns the plant with its notes attached (read-time join).
func (a *App) handleGetPlant(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := models.ParsePlantID(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid plant ID")
		return
	}

	ctx := r.Context()
	plant, err := a.store.GetPlant(ctx, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}
	if plant == nil {
		respondError(w, http.StatusNotFound, "Plant not found")
		return
	}

	respondJSON(w, http.StatusOK, plant)
}

func (a *App) handleUpdatePlant(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := models.ParsePlantID(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid plant ID")
		return
	}

	var plant models.Plant
	if err := json.NewDecoder(r.Body).Decode(&plant); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	plant.ID = id

	ctx := r.Context()
	if err := a.store.UpdatePlant(ctx, &plant); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, plant)
}

// handleDeletePlant runs the cascading delete: single-plant notes are
// removed, shared notes lose the reference, then the plant itself goes. The
// owner is passed in the userId query parameter and re-checked by the store.
//
// Response body reports how many plant records were deleted (0 or 1).
func (a *App) handleDeletePlant(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := models.ParsePlantID(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid plant ID")
		return
	}
	userID, err := models.ParseUserID(r.URL.Query().Get("userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid or missing userId")
		return
	}

	ctx := r.Context()
	deleted, err := a.store.DeletePlant(ctx, id, userID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (a *App) handleListPlants(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := models.ParseUserID(vars["userId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx := r.Context()
	plants, err := a.store.ListPlants(ctx, userID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, plants)
}

// Note handlers

func (a *App) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var note models.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ctx := r.Context()
	if err := a.store.CreateNote(ctx, &note); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, note)
}

func (a *App) handleGetNote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := models.ParseNoteID(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}

	ctx := r.Context()
	note, err := a.store.GetNote(ctx, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}
	if note == nil {
		respondError(w, http.StatusNotFound, "Note not found")
		return
	}

	respondJSON(w, http.StatusOK, note)
}

func (a *App) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := models.ParseNoteID(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}

	var note models.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	note.ID = id

	ctx := r.Context()
	if err := a.store.UpdateNote(ctx, &note); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, note)
}

func (a *App) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := models.ParseNoteID(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid note ID")
		return
	}

	ctx := r.Context()
	if err := a.store.DeleteNote(ctx, id); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (a *App) handleListNotes(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	plantID, err := models.ParsePlantID(vars["plantId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid plant ID")
		return
	}

	ctx := r.Context()
	notes, err := a.store.ListNotes(ctx, plantID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, notes)
}

// handleHealth reports service status for load balancers and monitoring.
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// respondStoreError translates the store's error taxonomy to a status code:
// invalid identifiers and validation failures are the client's fault,
// everything else is ours.
func (a *App) respondStoreError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	switch {
	case errors.Is(err, models.ErrInvalidIdentifier), errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		a.log.Error().Err(err).Msg("storage operation failed")
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
