// Package config loads, normalizes, and validates the TOML configuration
// for the stylus queue and worker, including the per-type handler command
// and timeout table.
package config
