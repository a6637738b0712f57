// Package handler maps job types to executable actions with per-type
// timeouts. Handlers are opaque to the worker: each one runs under a
// deadline and reports success or failure through its error return.
package handler
