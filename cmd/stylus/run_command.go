package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stylus/internal/handler"
	"stylus/internal/logging"
	"stylus/internal/notifications"
	"stylus/internal/queue"
	"stylus/internal/worker"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process queued jobs until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := queue.Open(cfg, logger)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}

			registry, err := handler.FromConfig(cfg, logger)
			if err != nil {
				return fmt.Errorf("build handler registry: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			w := worker.New(cfg, store, registry, notifications.NewService(cfg), logger)
			if err := w.Start(signalCtx); err != nil {
				return fmt.Errorf("start worker: %w", err)
			}

			<-signalCtx.Done()
			w.Stop()
			return nil
		},
	}
}
