// Package queue persists maintenance jobs in a single JSON document and
// exposes helpers for driving their lifecycle.
//
// The Store is the single source of truth for queue state. Every mutation
// runs a locked load-mutate-save cycle: an advisory file lock guards against
// concurrent producers, and saves go through a temp-file-then-rename replace
// so readers never observe a partially written document. Active jobs stay
// sorted by ascending priority; completed jobs migrate into a bounded
// history.
//
// Treat this package as the single source of truth for queue semantics; when
// you add new statuses or job fields, update the document shape here.
package queue
