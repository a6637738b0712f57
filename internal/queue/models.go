package queue

import (
	"strings"
)

// Status represents the lifecycle of a queued job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
	StatusSkipped,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Terminal reports whether the worker takes no further automatic action on a
// job in this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// JobType identifies which handler executes a job.
type JobType string

const (
	TypeQualityAnalysis     JobType = "quality_analysis"
	TypeVerifyAudio         JobType = "verify_audio"
	TypeBeetsImport         JobType = "beets_import"
	TypeFixFeaturedArtists  JobType = "fix_featured_artists"
	TypeWriteMetadata       JobType = "write_metadata"
	TypeMoveFiles           JobType = "move_files"
	TypeCatalogResearch     JobType = "catalog_research"
	TypeFetchLyrics         JobType = "fetch_lyrics"
	TypeFetchCDScans        JobType = "fetch_cd_scans"
	TypeFetchAnimatedCovers JobType = "fetch_animated_covers"
	TypeRefreshNavidrome    JobType = "refresh_navidrome"
)

var knownTypes = []JobType{
	TypeQualityAnalysis,
	TypeVerifyAudio,
	TypeBeetsImport,
	TypeFixFeaturedArtists,
	TypeWriteMetadata,
	TypeMoveFiles,
	TypeCatalogResearch,
	TypeFetchLyrics,
	TypeFetchCDScans,
	TypeFetchAnimatedCovers,
	TypeRefreshNavidrome,
}

var typeSet = func() map[JobType]struct{} {
	set := make(map[JobType]struct{}, len(knownTypes))
	for _, jobType := range knownTypes {
		set[jobType] = struct{}{}
	}
	return set
}()

// KnownTypes returns the ordered list of built-in job types.
func KnownTypes() []JobType {
	cp := make([]JobType, len(knownTypes))
	copy(cp, knownTypes)
	return cp
}

// ParseJobType normalizes a string into a JobType and reports whether it is a
// built-in type. Unknown types are still representable; the handler registry
// decides whether they are executable.
func ParseJobType(value string) (JobType, bool) {
	normalized := JobType(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := typeSet[normalized]
	return normalized, ok
}

// Summary describes aggregated queue counts for operator visibility. Counts
// are computed fresh from the persisted document, never cached.
type Summary struct {
	Pending   int
	Running   int
	Failed    int
	Completed int
	Total     int
}
