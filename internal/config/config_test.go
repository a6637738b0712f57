package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stylus/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("resolved = %s, want %s", resolved, path)
	}
	if cfg.Worker.PollInterval != 30 {
		t.Fatalf("expected default poll interval, got %d", cfg.Worker.PollInterval)
	}
	if cfg.Jobs.DefaultPriority != 5 {
		t.Fatalf("expected default priority 5, got %d", cfg.Jobs.DefaultPriority)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
[paths]
queue_file = "`+filepath.Join(base, "q", "jobs.json")+`"
log_dir = "`+filepath.Join(base, "logs")+`"

[logging]
format = " JSON "
level = "Debug"

[navidrome]
enabled = true
url = "http://nav.local:4533/"
api_key = " secret "

[[jobs.handler]]
type = " Beets_Import "
command = ["beet", "import", "-q", "{path}"]
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if cfg.Navidrome.URL != "http://nav.local:4533" {
		t.Fatalf("navidrome URL not trimmed: %q", cfg.Navidrome.URL)
	}
	if cfg.Navidrome.APIKey != "secret" {
		t.Fatalf("navidrome key not trimmed: %q", cfg.Navidrome.APIKey)
	}

	spec, ok := cfg.HandlerFor("beets_import")
	if !ok {
		t.Fatal("expected normalized handler type lookup to succeed")
	}
	if spec.Timeout != 3600 {
		t.Fatalf("expected built-in timeout applied, got %d", spec.Timeout)
	}
}

func TestLoadRejectsInvalidWorkerIntervals(t *testing.T) {
	path := writeConfig(t, `
[worker]
poll_interval = -5
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for negative poll interval")
	}
}

func TestLoadRejectsNavidromeWithoutCredentials(t *testing.T) {
	path := writeConfig(t, `
[navidrome]
enabled = true
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "navidrome.url") {
		t.Fatalf("expected navidrome.url error, got %v", err)
	}
}

func TestLoadRejectsDuplicateHandlers(t *testing.T) {
	path := writeConfig(t, `
[[jobs.handler]]
type = "move_files"
command = ["mv"]

[[jobs.handler]]
type = "move_files"
command = ["rsync"]
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "more than once") {
		t.Fatalf("expected duplicate handler error, got %v", err)
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	path := writeConfig(t, `
[[jobs.handler]]
type = "fetch_lyrics"
command = ["fetch-lyrics"]
env = ["DISCOGS_TOKEN"]
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "KEY=VALUE") {
		t.Fatalf("expected env format error, got %v", err)
	}
}

func TestDefaultHandlerTimeouts(t *testing.T) {
	if got := config.DefaultHandlerTimeout("quality_analysis"); got != 86400 {
		t.Fatalf("quality_analysis timeout = %d, want 86400", got)
	}
	if got := config.DefaultHandlerTimeout("refresh_navidrome"); got != 60 {
		t.Fatalf("refresh_navidrome timeout = %d, want 60", got)
	}
	if got := config.DefaultHandlerTimeout("custom_job"); got != 3600 {
		t.Fatalf("unlisted type timeout = %d, want 3600", got)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.QueueFile = filepath.Join(base, "queue", "jobs.json")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{filepath.Join(base, "queue"), filepath.Join(base, "logs")} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, err=%v", dir, err)
		}
	}
}
