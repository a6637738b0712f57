package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWorker(); err != nil {
		return err
	}
	if err := c.validateNavidrome(); err != nil {
		return err
	}
	if err := c.validateHandlers(); err != nil {
		return err
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateWorker() error {
	if c.Worker.PollInterval <= 0 {
		return errors.New("worker.poll_interval must be positive")
	}
	if c.Worker.ErrorRetryInterval <= 0 {
		return errors.New("worker.error_retry_interval must be positive")
	}
	return nil
}

func (c *Config) validateNavidrome() error {
	if !c.Navidrome.Enabled {
		return nil
	}
	if c.Navidrome.URL == "" {
		return errors.New("navidrome.url must be set when navidrome.enabled is true")
	}
	if c.Navidrome.APIKey == "" {
		return errors.New("navidrome.api_key must be set when navidrome.enabled is true")
	}
	return nil
}

func (c *Config) validateHandlers() error {
	seen := make(map[string]struct{}, len(c.Jobs.Handlers))
	for _, spec := range c.Jobs.Handlers {
		if spec.Type == "" {
			return errors.New("jobs.handler entries must set type")
		}
		if _, ok := seen[spec.Type]; ok {
			return fmt.Errorf("jobs.handler type %q configured more than once", spec.Type)
		}
		seen[spec.Type] = struct{}{}
		if len(spec.Command) == 0 {
			return fmt.Errorf("jobs.handler %q must set command", spec.Type)
		}
		if strings.TrimSpace(spec.Command[0]) == "" {
			return fmt.Errorf("jobs.handler %q command executable must not be empty", spec.Type)
		}
		if spec.Timeout <= 0 {
			return fmt.Errorf("jobs.handler %q timeout must be positive", spec.Type)
		}
		for _, entry := range spec.Env {
			if !strings.Contains(entry, "=") {
				return fmt.Errorf("jobs.handler %q env entry %q must be KEY=VALUE", spec.Type, entry)
			}
		}
	}
	return nil
}
