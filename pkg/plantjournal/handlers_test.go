package plantjournal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantjournal/plantjournal/pkg/models"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := New(&Config{UseMemory: true, ServerPort: "0"}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	return app
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func signIn(t *testing.T, router http.Handler, fbID string) models.User {
	t.Helper()
	rec := doJSON(t, router, "POST", "/api/auth/facebook", models.FacebookProfile{ID: fbID, DisplayName: "Tester"})
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody[models.User](t, rec)
}

func TestHealth(t *testing.T) {
	router := newTestApp(t).routes()
	rec := doJSON(t, router, "GET", "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFacebookSignIn(t *testing.T) {
	router := newTestApp(t).routes()

	first := signIn(t, router, "fb-1")
	assert.False(t, first.ID.IsZero())
	assert.Equal(t, "fb-1", first.Facebook.ID)

	again := signIn(t, router, "fb-1")
	assert.Equal(t, first.ID, again.ID)
}

func TestFacebookSignInRequiresProviderID(t *testing.T) {
	router := newTestApp(t).routes()
	rec := doJSON(t, router, "POST", "/api/auth/facebook", models.FacebookProfile{DisplayName: "No ID"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlantLifecycle(t *testing.T) {
	router := newTestApp(t).routes()
	user := signIn(t, router, "fb-1")

	rec := doJSON(t, router, "POST", "/api/plants", models.Plant{UserID: user.ID, Name: "monstera"})
	require.Equal(t, http.StatusCreated, rec.Code)
	plant := decodeBody[models.Plant](t, rec)
	require.False(t, plant.ID.IsZero())

	rec = doJSON(t, router, "GET", "/api/plants/"+plant.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[models.Plant](t, rec)
	assert.Equal(t, "monstera", got.Name)

	plant.Name = "swiss cheese plant"
	rec = doJSON(t, router, "PUT", "/api/plants/"+plant.ID.String(), plant)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "GET", fmt.Sprintf("/api/users/%s/plants", user.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	plants := decodeBody[[]models.Plant](t, rec)
	require.Len(t, plants, 1)
	assert.Equal(t, "swiss cheese plant", plants[0].Name)
}

func TestGetPlantNotFound(t *testing.T) {
	router := newTestApp(t).routes()
	rec := doJSON(t, router, "GET", "/api/plants/"+models.NewPlantID().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPlantInvalidID(t *testing.T) {
	router := newTestApp(t).routes()
	rec := doJSON(t, router, "GET", "/api/plants/not-hex", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePlantWithoutOwner(t *testing.T) {
	router := newTestApp(t).routes()
	rec := doJSON(t, router, "POST", "/api/plants", models.Plant{Name: "orphan"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPlantIncludesNotes(t *testing.T) {
	router := newTestApp(t).routes()
	user := signIn(t, router, "fb-1")

	rec := doJSON(t, router, "POST", "/api/plants", models.Plant{UserID: user.ID, Name: "fern"})
	require.Equal(t, http.StatusCreated, rec.Code)
	plant := decodeBody[models.Plant](t, rec)

	rec = doJSON(t, router, "POST", "/api/notes", models.Note{
		UserID:   user.ID,
		PlantIDs: []models.PlantID{plant.ID},
		Note:     "watered",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, "GET", "/api/plants/"+plant.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[models.Plant](t, rec)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "watered", got.Notes[0].Note)
}

func TestDeletePlantCascadesOverHTTP(t *testing.T) {
	router := newTestApp(t).routes()
	user := signIn(t, router, "fb-1")

	rec := doJSON(t, router, "POST", "/api/plants", models.Plant{UserID: user.ID, Name: "doomed"})
	require.Equal(t, http.StatusCreated, rec.Code)
	doomed := decodeBody[models.Plant](t, rec)

	rec = doJSON(t, router, "POST", "/api/plants", models.Plant{UserID: user.ID, Name: "keeper"})
	require.Equal(t, http.StatusCreated, rec.Code)
	keeper := decodeBody[models.Plant](t, rec)

	rec = doJSON(t, router, "POST", "/api/notes", models.Note{
		UserID: user.ID, PlantIDs: []models.PlantID{doomed.ID}, Note: "only doomed",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, "POST", "/api/notes", models.Note{
		UserID: user.ID, PlantIDs: []models.PlantID{doomed.ID, keeper.ID}, Note: "shared",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	shared := decodeBody[models.Note](t, rec)

	rec = doJSON(t, router, "DELETE",
		fmt.Sprintf("/api/plants/%s?userId=%s", doomed.ID, user.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody[map[string]int64](t, rec)
	assert.Equal(t, int64(1), result["deleted"])

	rec = doJSON(t, router, "GET", "/api/plants/"+doomed.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, "GET", "/api/notes/"+shared.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[models.Note](t, rec)
	assert.Equal(t, []models.PlantID{keeper.ID}, got.PlantIDs)
}

func TestDeletePlantRequiresOwner(t *testing.T) {
	router := newTestApp(t).routes()
	user := signIn(t, router, "fb-1")

	rec := doJSON(t, router, "POST", "/api/plants", models.Plant{UserID: user.ID, Name: "guarded"})
	require.Equal(t, http.StatusCreated, rec.Code)
	plant := decodeBody[models.Plant](t, rec)

	rec = doJSON(t, router, "DELETE", "/api/plants/"+plant.ID.String(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, "DELETE",
		fmt.Sprintf("/api/plants/%s?userId=%s", plant.ID, models.NewUserID()), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody[map[string]int64](t, rec)
	assert.Zero(t, result["deleted"])
}

func TestNoteLifecycle(t *testing.T) {
	router := newTestApp(t).routes()
	user := signIn(t, router, "fb-1")

	rec := doJSON(t, router, "POST", "/api/plants", models.Plant{UserID: user.ID, Name: "aloe"})
	require.Equal(t, http.StatusCreated, rec.Code)
	plant := decodeBody[models.Plant](t, rec)

	rec = doJSON(t, router, "POST", "/api/notes", models.Note{
		UserID: user.ID, PlantIDs: []models.PlantID{plant.ID}, Note: "repotted",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	note := decodeBody[models.Note](t, rec)

	note.Note = "repotted and watered"
	rec = doJSON(t, router, "PUT", "/api/notes/"+note.ID.String(), note)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "GET", fmt.Sprintf("/api/plants/%s/notes", plant.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decodeBody[[]models.Note](t, rec)
	require.Len(t, notes, 1)
	assert.Equal(t, "repotted and watered", notes[0].Note)

	rec = doJSON(t, router, "DELETE", "/api/notes/"+note.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, "GET", "/api/notes/"+note.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateNoteWithoutPlantsFails(t *testing.T) {
	router := newTestApp(t).routes()
	user := signIn(t, router, "fb-1")

	rec := doJSON(t, router, "POST", "/api/notes", models.Note{UserID: user.ID, Note: "floating"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
