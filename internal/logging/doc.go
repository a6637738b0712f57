// Package logging constructs slog loggers with the console and JSON handlers
// shared across the CLI and worker, plus standardized attribute helpers so
// job lifecycle events carry consistent field names.
package logging
