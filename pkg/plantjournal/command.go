package plantjournal

// Command is a parsed subcommand with its options.
type Command interface {
	commandName() string
}

// RunCommand starts the HTTP server.
type RunCommand struct{}

func (c *RunCommand) commandName() string { return "run" }
