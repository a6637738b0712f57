package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stylus/internal/config"
	"stylus/internal/logging"
	"stylus/internal/queue"
	"stylus/internal/services/navidrome"
)

// FromConfig builds a registry from the configured handler table. The
// Navidrome refresh type is backed by the HTTP client when the integration
// is enabled; a configured command for the same type takes precedence so
// operators can still shell out if they prefer.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger = logging.NewComponentLogger(logger, "handler")

	registry := NewRegistry()
	for _, spec := range cfg.Jobs.Handlers {
		opts := []CommandOption{}
		if len(spec.Env) > 0 {
			opts = append(opts, WithEnv(spec.Env))
		}
		cmd, err := NewCommand(spec.Command, opts...)
		if err != nil {
			return nil, fmt.Errorf("handler %q: %w", spec.Type, err)
		}
		registry.Register(queue.JobType(spec.Type), cmd, time.Duration(spec.Timeout)*time.Second)
	}

	if cfg.Navidrome.Enabled {
		if _, configured := cfg.HandlerFor(string(queue.TypeRefreshNavidrome)); !configured {
			client, err := navidrome.New(cfg.Navidrome.URL, cfg.Navidrome.APIKey, time.Duration(cfg.Navidrome.Timeout)*time.Second)
			if err != nil {
				return nil, fmt.Errorf("navidrome handler: %w", err)
			}
			refresh := Func(func(ctx context.Context, _ map[string]string) error {
				return client.StartScan(ctx)
			})
			registry.Register(queue.TypeRefreshNavidrome, refresh, time.Duration(cfg.Navidrome.Timeout)*time.Second)
		}
	}

	logger.Debug("handler registry configured", logging.Int("handlers", len(registry.Types())))
	return registry, nil
}
