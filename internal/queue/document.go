package queue

import (
	"sort"
	"time"
)

// maxCompletedHistory bounds the completed list; oldest entries are evicted
// first at save time.
const maxCompletedHistory = 100

// document is the persisted queue shape. Stats are advisory counters only;
// authoritative counts are recomputed from jobs and completed on demand.
type document struct {
	Jobs        []*Job         `json:"jobs"`
	Completed   []*Job         `json:"completed"`
	Stats       map[string]int `json:"stats"`
	LastUpdated time.Time      `json:"last_updated"`
}

func newDocument() *document {
	return &document{
		Jobs:      []*Job{},
		Completed: []*Job{},
		Stats:     map[string]int{},
	}
}

// sortJobs orders active jobs by ascending priority. The sort is stable so
// jobs with equal priority keep their insertion order.
func (d *document) sortJobs() {
	sort.SliceStable(d.Jobs, func(i, j int) bool {
		return d.Jobs[i].Priority < d.Jobs[j].Priority
	})
}

func (d *document) capCompleted() {
	if len(d.Completed) > maxCompletedHistory {
		d.Completed = d.Completed[len(d.Completed)-maxCompletedHistory:]
	}
}

func (d *document) findJob(id string) *Job {
	for _, job := range d.Jobs {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (d *document) removeJob(id string) bool {
	for i, job := range d.Jobs {
		if job.ID == id {
			d.Jobs = append(d.Jobs[:i], d.Jobs[i+1:]...)
			return true
		}
	}
	return false
}

func (d *document) summary() Summary {
	summary := Summary{
		Completed: len(d.Completed),
		Total:     len(d.Jobs),
	}
	for _, job := range d.Jobs {
		switch job.Status {
		case StatusPending:
			summary.Pending++
		case StatusRunning:
			summary.Running++
		case StatusFailed:
			summary.Failed++
		}
	}
	return summary
}

func (d *document) refreshStats() {
	summary := d.summary()
	d.Stats = map[string]int{
		"pending":   summary.Pending,
		"running":   summary.Running,
		"failed":    summary.Failed,
		"completed": summary.Completed,
		"total":     summary.Total,
	}
}
