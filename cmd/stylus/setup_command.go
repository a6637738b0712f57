package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stylus/internal/config"
	"stylus/internal/queue"
)

func newSetupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Reset the queue and seed the standard maintenance run",
		Long: "Setup clears any pending or running jobs and enqueues the full " +
			"maintenance sequence, from beets import through the Navidrome " +
			"library refresh, in execution order. Completed history is preserved.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				count, err := store.Seed(cmd.Context(), queue.DefaultSeed())
				if err != nil {
					return fmt.Errorf("seed queue: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Seeded %d maintenance jobs\n", count)
				return printStatus(cmd, store)
			})
		},
	}
}
