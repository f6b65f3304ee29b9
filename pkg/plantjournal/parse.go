package plantjournal

import (
	"flag"
	"fmt"
)

// Parse parses command line arguments and returns the command to execute,
// the application configuration, and any error that occurred.
//
// Environment variables:
//
//	PLANTJOURNAL_MONGO_URL - MongoDB connection string (default: mongodb://localhost:27017)
//	PLANTJOURNAL_MONGO_DB  - database name (default: plantjournal)
func Parse(args []string) (Command, *Config, error) {
	flagSet := flag.NewFlagSet("plantjournal", flag.ContinueOnError)

	var (
		port    = flagSet.String("port", "8080", "Server port")
		memory  = flagSet.Bool("memory", false, "Use the in-memory store instead of MongoDB")
		logPath = flagSet.String("log", "", "Log file path (default: stdout)")
	)

	if err := flagSet.Parse(args); err != nil {
		return nil, nil, err
	}

	remainingArgs := flagSet.Args()
	if len(remainingArgs) == 0 {
		return nil, nil, fmt.Errorf(`subcommand required

Usage: plantjournal [flags] <command>

Commands:
  run       Start the plantjournal server

Examples:
  plantjournal run                   # MongoDB from PLANTJOURNAL_MONGO_URL
  plantjournal -memory run           # In-memory store, for development
  plantjournal -port=8090 run
  plantjournal -log=journal.log run`)
	}

	var cmd Command
	switch remainingArgs[0] {
	case "run":
		cmd = &RunCommand{}
	default:
		return nil, nil, fmt.Errorf("unknown command: %s\n\nValid commands: run", remainingArgs[0])
	}

	config := &Config{
		MongoURL:   GetEnvOrDefault("PLANTJOURNAL_MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:    GetEnvOrDefault("PLANTJOURNAL_MONGO_DB", "plantjournal"),
		UseMemory:  *memory,
		ServerPort: *port,
		LogPath:    *logPath,
	}

	return cmd, config, nil
}
