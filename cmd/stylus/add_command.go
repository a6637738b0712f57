package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stylus/internal/config"
	"stylus/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var priority int
	var paramFlags []string

	cmd := &cobra.Command{
		Use:   "add <type>",
		Short: "Enqueue a job",
		Long: "Add enqueues a single job of the given type. Types with a\n" +
			"[[jobs.handler]] entry in the configuration are accepted alongside\n" +
			"the built-in types:\n  " +
			strings.Join(jobTypeNames(), "\n  "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobType, builtin := queue.ParseJobType(args[0])
			if jobType == "" {
				return fmt.Errorf("unknown job type %q (see `stylus add --help`)", args[0])
			}
			params, err := parseParamFlags(paramFlags)
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				if !builtin {
					if _, configured := cfg.HandlerFor(string(jobType)); !configured {
						return fmt.Errorf("unknown job type %q (see `stylus add --help`)", args[0])
					}
				}
				if !cmd.Flags().Changed("priority") {
					priority = cfg.Jobs.DefaultPriority
				}
				id, err := store.Add(cmd.Context(), jobType, params, priority)
				if err != nil {
					return fmt.Errorf("enqueue job: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %s as %s\n", jobType, id)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&priority, "priority", "p", config.Default().Jobs.DefaultPriority, "Job priority (lower runs first)")
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "Job parameter as key=value (repeatable)")
	return cmd
}

func jobTypeNames() []string {
	types := queue.KnownTypes()
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}
	return names
}
