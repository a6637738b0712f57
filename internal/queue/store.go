package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"stylus/internal/config"
	"stylus/internal/logging"
)

// lockRetryDelay paces advisory lock acquisition retries.
const lockRetryDelay = 25 * time.Millisecond

// Store manages queue persistence backed by a single JSON document.
//
// An in-process mutex serializes access between goroutines and an advisory
// file lock serializes load-mutate-save cycles across processes, so
// concurrent producers cannot silently drop each other's updates.
type Store struct {
	path     string
	logger   *slog.Logger
	fileLock *flock.Flock

	mu sync.Mutex
}

// Open builds a store rooted at the configured queue file, creating required
// directories first.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return NewStore(cfg.Paths.QueueFile, logger), nil
}

// NewStore constructs a store with an explicit queue file path. Multiple
// stores may coexist as long as they point at different paths.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:     path,
		logger:   logging.NewComponentLogger(logger, "queue"),
		fileLock: flock.New(path + ".lock"),
	}
}

// Path returns the queue file location.
func (s *Store) Path() string {
	return s.path
}

// Add enqueues a job unless an active job with the same (type, params) pair
// already exists, in which case the existing job's ID is returned.
func (s *Store) Add(ctx context.Context, jobType JobType, params map[string]string, priority int) (string, error) {
	var id string
	err := s.withLock(ctx, func(doc *document) error {
		for _, existing := range doc.Jobs {
			if existing.Active() && existing.MatchesKey(jobType, params) {
				id = existing.ID
				return nil
			}
		}

		job := NewJob(jobType, params, priority)
		doc.Jobs = append(doc.Jobs, job)
		doc.sortJobs()
		if err := s.save(doc); err != nil {
			return err
		}
		id = job.ID
		s.logger.Info("job enqueued",
			logging.String(logging.FieldJobID, job.ID),
			logging.String(logging.FieldJobType, string(job.Type)),
			logging.Int("priority", job.Priority),
		)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// NextPending returns the first pending job in priority order, or nil when
// no pending job exists. An empty queue is not an error.
func (s *Store) NextPending(ctx context.Context) (*Job, error) {
	var next *Job
	err := s.withReadLock(ctx, func(doc *document) error {
		for _, job := range doc.Jobs {
			if job.Status == StatusPending {
				next = job.clone()
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// UpdateStatus transitions a job and persists the result. A completed job is
// removed from the active list and appended to history. An unknown ID is a
// logged no-op so a racing operator action cannot crash the worker.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status, errorMessage string) error {
	return s.withLock(ctx, func(doc *document) error {
		job := doc.findJob(id)
		if job == nil {
			s.logger.Warn("job not found for status update",
				logging.String(logging.FieldJobID, id),
				logging.String("status", string(status)),
			)
			return nil
		}

		now := time.Now().UTC()
		job.Status = status
		job.UpdatedAt = &now
		if errorMessage != "" {
			job.Error = errorMessage
		}
		if status == StatusCompleted {
			doc.removeJob(id)
			doc.Completed = append(doc.Completed, job)
		}
		return s.save(doc)
	})
}

// Status returns aggregate queue counts computed fresh from current state.
func (s *Store) Status(ctx context.Context) (Summary, error) {
	var summary Summary
	err := s.withReadLock(ctx, func(doc *document) error {
		summary = doc.summary()
		return nil
	})
	return summary, err
}

// List returns active jobs filtered by status set, in priority order. With
// no statuses all active jobs are returned.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	filter := make(map[Status]struct{}, len(statuses))
	for _, status := range statuses {
		filter[status] = struct{}{}
	}

	var jobs []*Job
	err := s.withReadLock(ctx, func(doc *document) error {
		for _, job := range doc.Jobs {
			if len(filter) > 0 {
				if _, ok := filter[job.Status]; !ok {
					continue
				}
			}
			jobs = append(jobs, job.clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// Completed returns up to limit most recent history entries, newest last.
// A non-positive limit returns the full retained history.
func (s *Store) Completed(ctx context.Context, limit int) ([]*Job, error) {
	var jobs []*Job
	err := s.withReadLock(ctx, func(doc *document) error {
		entries := doc.Completed
		if limit > 0 && len(entries) > limit {
			entries = entries[len(entries)-limit:]
		}
		for _, job := range entries {
			jobs = append(jobs, job.clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// SeedSpec describes one job enqueued by Seed.
type SeedSpec struct {
	Type     JobType
	Params   map[string]string
	Priority int
}

// Seed clears active jobs and enqueues the provided specs in order,
// returning the number of jobs queued. Completed history is retained.
func (s *Store) Seed(ctx context.Context, specs []SeedSpec) (int, error) {
	var queued int
	err := s.withLock(ctx, func(doc *document) error {
		doc.Jobs = doc.Jobs[:0]
		for _, spec := range specs {
			doc.Jobs = append(doc.Jobs, NewJob(spec.Type, spec.Params, spec.Priority))
		}
		doc.sortJobs()
		if err := s.save(doc); err != nil {
			return err
		}
		queued = len(specs)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return queued, nil
}

// Clear removes all active jobs.
func (s *Store) Clear(ctx context.Context) (int, error) {
	var removed int
	err := s.withLock(ctx, func(doc *document) error {
		removed = len(doc.Jobs)
		doc.Jobs = doc.Jobs[:0]
		return s.save(doc)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// ClearFailed removes only failed jobs.
func (s *Store) ClearFailed(ctx context.Context) (int, error) {
	var removed int
	err := s.withLock(ctx, func(doc *document) error {
		kept := doc.Jobs[:0]
		for _, job := range doc.Jobs {
			if job.Status == StatusFailed {
				removed++
				continue
			}
			kept = append(kept, job)
		}
		doc.Jobs = kept
		if removed == 0 {
			return nil
		}
		return s.save(doc)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// RetryFailed moves failed jobs (optionally a subset by ID) back to pending
// and increments their attempt counters. This is an operator action; the
// worker never retries on its own.
func (s *Store) RetryFailed(ctx context.Context, ids ...string) (int, error) {
	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	var retried int
	err := s.withLock(ctx, func(doc *document) error {
		now := time.Now().UTC()
		for _, job := range doc.Jobs {
			if job.Status != StatusFailed {
				continue
			}
			if len(idSet) > 0 {
				if _, ok := idSet[job.ID]; !ok {
					continue
				}
			}
			job.Status = StatusPending
			job.Error = ""
			job.Attempts++
			job.UpdatedAt = &now
			retried++
		}
		if retried == 0 {
			return nil
		}
		return s.save(doc)
	})
	if err != nil {
		return 0, err
	}
	return retried, nil
}

// Remove deletes an active job by ID, reporting whether it existed.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := s.withLock(ctx, func(doc *document) error {
		if !doc.removeJob(id) {
			return nil
		}
		removed = true
		return s.save(doc)
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (s *Store) withLock(ctx context.Context, fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire queue lock: %w", err)
	}
	if !locked {
		return errors.New("queue lock unavailable")
	}
	defer s.fileLock.Unlock()

	return fn(s.load())
}

func (s *Store) withReadLock(ctx context.Context, fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.fileLock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire queue read lock: %w", err)
	}
	if !locked {
		return errors.New("queue lock unavailable")
	}
	defer s.fileLock.Unlock()

	return fn(s.load())
}

// load reads the persisted document. A missing or unparsable file yields an
// empty document: recovery is deliberate soft-failure, surfaced as a log
// line rather than an error.
func (s *Store) load() *document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("queue file unreadable; starting empty",
				logging.Error(err),
				logging.String("path", s.path),
			)
		}
		return newDocument()
	}

	doc := newDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		s.logger.Warn("queue file corrupt; starting empty",
			logging.Error(err),
			logging.String("path", s.path),
		)
		return newDocument()
	}
	if doc.Jobs == nil {
		doc.Jobs = []*Job{}
	}
	if doc.Completed == nil {
		doc.Completed = []*Job{}
	}
	if doc.Stats == nil {
		doc.Stats = map[string]int{}
	}
	return doc
}

// save serializes the document to a temp file in the same directory and
// renames it over the target. A failed write leaves the previous file
// intact; readers never observe partial content.
func (s *Store) save(doc *document) error {
	doc.capCompleted()
	doc.refreshStats()
	doc.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal queue document: %w", err)
	}
	data = append(data, '\n')

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write queue temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace queue file: %w", err)
	}
	return nil
}
