package queue

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
)

// Job represents a single unit of queued work.
type Job struct {
	ID        string            `json:"id"`
	Type      JobType           `json:"type"`
	Params    map[string]string `json:"params"`
	Priority  int               `json:"priority"`
	Status    Status            `json:"status"`
	CreatedAt time.Time         `json:"created"`
	UpdatedAt *time.Time        `json:"updated,omitempty"`
	Attempts  int               `json:"attempts"`
	Error     string            `json:"error,omitempty"`
}

// NewJob constructs a pending job with a freshly generated identifier.
func NewJob(jobType JobType, params map[string]string, priority int) *Job {
	now := time.Now().UTC()
	if params == nil {
		params = map[string]string{}
	}
	return &Job{
		ID:        newJobID(jobType, now),
		Type:      jobType,
		Params:    maps.Clone(params),
		Priority:  priority,
		Status:    StatusPending,
		CreatedAt: now,
	}
}

// MatchesKey reports whether the job shares the (type, params) dedup key.
func (j *Job) MatchesKey(jobType JobType, params map[string]string) bool {
	if j == nil || j.Type != jobType {
		return false
	}
	if len(j.Params) == 0 && len(params) == 0 {
		return true
	}
	return maps.Equal(j.Params, params)
}

// Active reports whether the job occupies its dedup key, blocking duplicate
// enqueues of the same (type, params) pair.
func (j *Job) Active() bool {
	return j != nil && (j.Status == StatusPending || j.Status == StatusRunning)
}

func (j *Job) clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	cp.Params = maps.Clone(j.Params)
	if j.UpdatedAt != nil {
		updated := *j.UpdatedAt
		cp.UpdatedAt = &updated
	}
	return &cp
}

// Job IDs pair a millisecond timestamp with a random suffix so rapid
// issuance of the same type cannot collide.
func newJobID(jobType JobType, now time.Time) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%d_%s", jobType, now.UnixMilli(), suffix)
}
