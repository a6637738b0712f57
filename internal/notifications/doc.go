// Package notifications publishes job lifecycle events to an ntfy topic so
// an operator hears about completions and failures without watching logs.
// When no topic is configured every call is a no-op.
package notifications
