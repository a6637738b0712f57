package config

const (
	defaultQueueFile          = "~/.local/share/stylus/queue.json"
	defaultLogDir             = "~/.local/share/stylus/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultPollInterval       = 30
	defaultErrorRetryInterval = 10
	defaultNotifyTimeout      = 10
	defaultNavidromeTimeout   = 60
	defaultJobPriority        = 5
	defaultHandlerTimeout     = 3600
)

// defaultHandlerTimeouts is the per-type timeout table in seconds, spanning
// the lightweight service refresh up to day-long bulk analysis runs. Config
// entries override these per handler.
var defaultHandlerTimeouts = map[string]int{
	"quality_analysis":      86400,
	"verify_audio":          43200,
	"beets_import":          3600,
	"fix_featured_artists":  1800,
	"write_metadata":        1800,
	"move_files":            3600,
	"catalog_research":      7200,
	"fetch_lyrics":          7200,
	"fetch_cd_scans":        7200,
	"fetch_animated_covers": 7200,
	"refresh_navidrome":     60,
}

// DefaultHandlerTimeout returns the built-in timeout in seconds for a job
// type, falling back to a one hour default for unlisted types.
func DefaultHandlerTimeout(jobType string) int {
	if timeout, ok := defaultHandlerTimeouts[jobType]; ok {
		return timeout
	}
	return defaultHandlerTimeout
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			QueueFile: defaultQueueFile,
			LogDir:    defaultLogDir,
		},
		Worker: Worker{
			PollInterval:       defaultPollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Completed:      true,
			Failed:         true,
		},
		Navidrome: Navidrome{
			Timeout: defaultNavidromeTimeout,
		},
		Jobs: Jobs{
			DefaultPriority: defaultJobPriority,
		},
	}
}
