package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"stylus/internal/queue"
)

// Handler executes the action behind a single job type.
type Handler interface {
	Run(ctx context.Context, params map[string]string) error
}

// Func adapts a function to the Handler interface.
type Func func(ctx context.Context, params map[string]string) error

// Run implements Handler.
func (f Func) Run(ctx context.Context, params map[string]string) error {
	return f(ctx, params)
}

// Registration pairs a handler with the hard timeout enforced around it.
type Registration struct {
	Handler Handler
	Timeout time.Duration
}

// Registry maps job types to registrations. Lookups of unregistered types
// report ok=false; the worker classifies those as failed jobs rather than
// crashing.
type Registry struct {
	mu      sync.RWMutex
	entries map[queue.JobType]Registration
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[queue.JobType]Registration)}
}

// Register associates a job type with a handler and timeout. Re-registering
// a type replaces the previous entry.
func (r *Registry) Register(jobType queue.JobType, h Handler, timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[jobType] = Registration{Handler: h, Timeout: timeout}
}

// Lookup returns the registration for a job type.
func (r *Registry) Lookup(jobType queue.JobType) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[jobType]
	return reg, ok
}

// Types returns the registered job types in sorted order.
func (r *Registry) Types() []queue.JobType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]queue.JobType, 0, len(r.entries))
	for jobType := range r.entries {
		types = append(types, jobType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
