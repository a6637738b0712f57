package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"stylus/internal/queue"
)

var titleCaser = cases.Title(language.Und)

func statusLabel(status queue.Status) string {
	return titleCaser.String(strings.ReplaceAll(string(status), "_", " "))
}

func typeLabel(jobType queue.JobType) string {
	return titleCaser.String(strings.ReplaceAll(string(jobType), "_", " "))
}

func formatParams(params map[string]string) string {
	if len(params) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, params[k]))
	}
	return truncate(strings.Join(parts, " "), 48)
}

func formatTimestamp(ts *time.Time) string {
	if ts == nil || ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

func truncate(value string, limit int) string {
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}

func parseParamFlags(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(values))
	for _, raw := range values {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q (expected key=value)", raw)
		}
		params[key] = value
	}
	return params, nil
}

func buildJobRows(jobs []*queue.Job) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			job.ID,
			typeLabel(job.Type),
			statusLabel(job.Status),
			fmt.Sprintf("%d", job.Priority),
			formatParams(job.Params),
			fmt.Sprintf("%d", job.Attempts),
			formatTimestamp(job.UpdatedAt),
		})
	}
	return rows
}

var jobTableColumns = []tableColumn{
	{Title: "ID"},
	{Title: "Type"},
	{Title: "Status"},
	{Title: "Priority", Numeric: true},
	{Title: "Params"},
	{Title: "Attempts", Numeric: true},
	{Title: "Updated"},
}
