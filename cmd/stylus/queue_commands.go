package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stylus/internal/config"
	"stylus/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the job queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueClearFailedCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string
	var completedLimit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]queue.Status, 0, len(listStatuses))
			for _, raw := range listStatuses {
				status, ok := queue.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q", raw)
				}
				statuses = append(statuses, status)
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				jobs, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return fmt.Errorf("list jobs: %w", err)
				}
				if completedLimit != 0 {
					completed, err := store.Completed(cmd.Context(), completedLimit)
					if err != nil {
						return fmt.Errorf("list completed jobs: %w", err)
					}
					jobs = append(jobs, completed...)
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(jobTableColumns, buildJobRows(jobs)))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by job status (repeatable)")
	cmd.Flags().IntVar(&completedLimit, "completed", 0, "Also show up to N completed jobs from history")
	return cmd
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every active job",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return errors.New("refusing to clear the queue without --force")
			}
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return fmt.Errorf("clear queue: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d jobs\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Confirm removal of all active jobs")
	return cmd
}

func newQueueClearFailedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-failed",
		Short: "Remove failed jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				removed, err := store.ClearFailed(cmd.Context())
				if err != nil {
					return fmt.Errorf("clear failed jobs: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d failed jobs\n", removed)
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id ...]",
		Short: "Return failed jobs to pending",
		Long: "Retry moves failed jobs back to pending so the worker picks them " +
			"up again. With no arguments every failed job is retried.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				retried, err := store.RetryFailed(cmd.Context(), args...)
				if err != nil {
					return fmt.Errorf("retry failed jobs: %w", err)
				}
				if retried == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No failed jobs to retry")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Retried %d jobs\n", retried)
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a single job by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				removed, err := store.Remove(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("remove job: %w", err)
				}
				if !removed {
					return fmt.Errorf("no job with ID %s", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}
