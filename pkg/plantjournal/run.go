package plantjournal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Run starts the HTTP server and blocks until the context is cancelled or a
// fatal server error occurs. On shutdown, active requests get up to 5
// seconds to complete.
//
// # API Endpoints
//
// Health check:
//
//	GET  /api/health                         - Service health status
//
// Authentication:
//
//	POST /api/auth/facebook                  - Sign in with a Facebook profile (find-or-create)
//
// Users:
//
//	GET    /api/users/{id}                   - Get user by ID
//	GET    /api/users/{userId}/plants        - List user's plants
//
// Plants:
//
//	POST   /api/plants                       - Create new plant
//	GET    /api/plants/{id}                  - Get plant with its notes
//	PUT    /api/plants/{id}                  - Update plant
//	DELETE /api/plants/{id}?userId={userId}  - Cascading delete (notes repaired first)
//	GET    /api/plants/{plantId}/notes       - List plant's notes
//
// Notes:
//
//	POST   /api/notes                        - Create new note
//	GET    /api/notes/{id}                   - Get note by ID
//	PUT    /api/notes/{id}                   - Update note
//	DELETE /api/notes/{id}                   - Delete note
//
// Live updates:
//
//	GET    /api/live                         - WebSocket feed of entity changes
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	router := a.routes()

	addr := fmt.Sprintf(":%s", a.config.ServerPort)
	a.log.Info().Str("addr", addr).Msg("starting plantjournal server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

func (a *App) routes() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", a.handleHealth).Methods("GET")

	api.HandleFunc("/auth/facebook", a.handleFacebookSignIn).Methods("POST")

	api.HandleFunc("/users/{id}", a.handleGetUser).Methods("GET")
	api.HandleFunc("/users/{userId}/plants", a.handleListPlants).Methods("GET")

	api.HandleFunc("/plants", a.handleCreatePlant).Methods("POST")
	api.HandleFunc("/plants/{id}", a.handleGetPlant).Methods("GET")
	api.HandleFunc("/plants/{id}", a.handleUpdatePlant).Methods("PUT")
	api.HandleFunc("/plants/{id}", a.handleDeletePlant).Methods("DELETE")
	api.HandleFunc("/plants/{plantId}/notes", a.handleListNotes).Methods("GET")

	api.HandleFunc("/notes", a.handleCreateNote).Methods("POST")
	api.HandleFunc("/notes/{id}", a.handleGetNote).Methods("GET")
	api.HandleFunc("/notes/{id}", a.handleUpdateNote).Methods("PUT")
	api.HandleFunc("/notes/{id}", a.handleDeleteNote).Methods("DELETE")

	api.HandleFunc("/live", a.handleLive).Methods("GET")

	// Health check route outside the /api prefix, for load balancers.
	router.HandleFunc("/health", a.handleHealth).Methods("GET")

	return router
}
