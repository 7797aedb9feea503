package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (invalid config file or plan)
	ExitDataError   = 3 // Data error (malformed community or ground-truth record)
	ExitNotFound    = 4 // Query node or run not found
)
