package testsupport

import (
	"path/filepath"
	"testing"

	"stylus/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config backed by a unique temp directory per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.QueueFile = filepath.Join(base, "queue", "jobs.json")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Worker.PollInterval = 1
	cfgVal.Worker.ErrorRetryInterval = 1

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithHandler appends a handler registration to the test config.
func WithHandler(spec config.HandlerSpec) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Jobs.Handlers = append(b.cfg.Jobs.Handlers, spec)
	}
}

// WithNtfyTopic sets the notification topic on the test config.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithNavidrome enables the Navidrome integration against the given server.
func WithNavidrome(url, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Navidrome.Enabled = true
		b.cfg.Navidrome.URL = url
		b.cfg.Navidrome.APIKey = apiKey
	}
}
