// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task, rejected input).
	UserError = 1

	// ConfigError indicates an invalid config file, environment or flag value.
	ConfigError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)
