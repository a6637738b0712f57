package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeNavidrome()
	c.normalizeHandlers()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.QueueFile) == "" {
		c.Paths.QueueFile = defaultQueueFile
	}
	if c.Paths.QueueFile, err = expandPath(c.Paths.QueueFile); err != nil {
		return fmt.Errorf("paths.queue_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeNavidrome() {
	c.Navidrome.URL = strings.TrimRight(strings.TrimSpace(c.Navidrome.URL), "/")
	c.Navidrome.APIKey = strings.TrimSpace(c.Navidrome.APIKey)
	if c.Navidrome.Timeout <= 0 {
		c.Navidrome.Timeout = defaultNavidromeTimeout
	}
}

func (c *Config) normalizeHandlers() {
	for i := range c.Jobs.Handlers {
		spec := &c.Jobs.Handlers[i]
		spec.Type = strings.ToLower(strings.TrimSpace(spec.Type))
		if spec.Timeout <= 0 {
			spec.Timeout = DefaultHandlerTimeout(spec.Type)
		}
	}
	if c.Jobs.DefaultPriority <= 0 {
		c.Jobs.DefaultPriority = defaultJobPriority
	}
}
