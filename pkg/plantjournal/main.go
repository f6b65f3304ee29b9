package plantjournal

import (
	"context"
	"fmt"

	"github.com/plantjournal/plantjournal/pkg/logger"
)

// Main is the entry point for the plantjournal application. It takes a
// context for cancellation and command line arguments, then executes the
// parsed command. Callable directly from tests without building the binary.
func Main(ctx context.Context, args []string) error {
	cmd, config, err := Parse(args)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	logBuild := logger.New()
	if config.LogPath != "" {
		logBuild = logBuild.FromPath(config.LogPath)
	}
	logData, err := logBuild.Make()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logData.Close()

	app, err := New(config, logData.Logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer app.Close(context.Background())

	switch c := cmd.(type) {
	case *RunCommand:
		if err := app.Run(ctx, c); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	default:
		return fmt.Errorf("unknown command type: %T", cmd)
	}

	return nil
}
