package plantjournal

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/plantjournal/plantjournal/pkg/store"
	"github.com/plantjournal/plantjournal/pkg/store/document"
	"github.com/plantjournal/plantjournal/pkg/store/memory"
	"github.com/plantjournal/plantjournal/pkg/store/mongodb"
)

// Config holds application configuration, read from flags and environment.
type Config struct {
	// Database configuration
	MongoURL string
	MongoDB  string

	// UseMemory swaps MongoDB for the in-memory backend. Data lives only as
	// long as the process; meant for development and tests.
	UseMemory bool

	// Server configuration
	ServerPort string

	// Log file path; empty means stdout.
	LogPath string
}

// GetEnvOrDefault reads an environment value, falling back when unset.
func GetEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

// App holds the application state: the data-access facade, the mutation bus
// feeding the live WebSocket endpoint, and the logger.
type App struct {
	store   store.Store
	journal *store.Journal
	bus     *Bus
	config  *Config
	log     zerolog.Logger
}

// New creates a new application instance. The MongoDB connection itself is
// established lazily on the first storage operation.
func New(config *Config, log zerolog.Logger) (*App, error) {
	var docs document.Store
	if config.UseMemory {
		docs = memory.New()
		log.Info().Msg("using in-memory store")
	} else {
		conn := mongodb.NewConnManager(config.MongoURL)
		docs = mongodb.NewStore(conn, config.MongoDB)
		log.Info().Str("url", config.MongoURL).Str("db", config.MongoDB).Msg("using MongoDB store")
	}

	journal := store.NewJournal(docs, log)
	bus := NewBus(log)
	journal.OnMutation(bus.Publish)

	return &App{
		store:   journal,
		journal: journal,
		bus:     bus,
		config:  config,
		log:     log,
	}, nil
}

// Store returns the underlying store (useful for testing).
func (a *App) Store() store.Store {
	return a.store
}

// Close closes the application and its resources.
func (a *App) Close(ctx context.Context) error {
	a.bus.Close()
	return a.store.Close(ctx)
}
