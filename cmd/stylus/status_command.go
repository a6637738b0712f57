package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stylus/internal/config"
	"stylus/internal/queue"
)

const recentCompletedLimit = 10

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue summary, active jobs, and recent completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				return printStatus(cmd, store)
			})
		},
	}
}

func printStatus(cmd *cobra.Command, store *queue.Store) error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	summary, err := store.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("queue status: %w", err)
	}

	for _, line := range renderSectionHeader("Queue Summary", colorize) {
		fmt.Fprintln(out, line)
	}
	summaryRows := [][]string{
		{"Pending", strconv.Itoa(summary.Pending)},
		{"Running", strconv.Itoa(summary.Running)},
		{"Failed", strconv.Itoa(summary.Failed)},
		{"Completed", strconv.Itoa(summary.Completed)},
		{"Total", strconv.Itoa(summary.Total)},
	}
	fmt.Fprintln(out, renderTable([]tableColumn{{Title: "Status"}, {Title: "Count", Numeric: true}}, summaryRows))

	active, err := store.List(cmd.Context(), queue.StatusPending, queue.StatusRunning, queue.StatusFailed)
	if err != nil {
		return fmt.Errorf("list active jobs: %w", err)
	}
	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Active Jobs", colorize) {
		fmt.Fprintln(out, line)
	}
	if len(active) == 0 {
		fmt.Fprintln(out, "No active jobs")
	} else {
		fmt.Fprintln(out, renderTable(jobTableColumns, buildJobRows(active)))
	}

	completed, err := store.Completed(cmd.Context(), recentCompletedLimit)
	if err != nil {
		return fmt.Errorf("list completed jobs: %w", err)
	}
	if len(completed) > 0 {
		fmt.Fprintln(out)
		for _, line := range renderSectionHeader("Recently Completed", colorize) {
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out, renderTable(jobTableColumns, buildJobRows(completed)))
	}
	return nil
}
