package config

import "time"

// Setting keys persisted in the settings table.
const (
	KeyLogMaxSizeMB     = "log.max_size_mb"
	KeyLogMaxBackups    = "log.max_backups"
	KeyLogMaxAgeDays    = "log.max_age_days"
	KeyLogCompress      = "log.compress"
	KeyStatementTimeout = "database.statement_timeout"
	KeyHTTPReadTimeout  = "http.read_timeout"
	KeyHTTPWriteTimeout = "http.write_timeout"
	KeyViewRowLimit     = "view.row_limit"
)

const (
	DefaultLogMaxSizeMB     = 50
	DefaultLogMaxBackups    = 5
	DefaultLogMaxAgeDays    = 30
	DefaultLogCompress      = true
	DefaultStatementTimeout = 5 * time.Second
	DefaultHTTPReadTimeout  = 15 * time.Second
	DefaultHTTPWriteTimeout = 15 * time.Second
	DefaultViewRowLimit     = 0 // 0 = unlimited
)

// Defaults are written to the settings table on first start.
func Defaults() map[string]any {
	return map[string]any{
		KeyLogMaxSizeMB:     DefaultLogMaxSizeMB,
		KeyLogMaxBackups:    DefaultLogMaxBackups,
		KeyLogMaxAgeDays:    DefaultLogMaxAgeDays,
		KeyLogCompress:      DefaultLogCompress,
		KeyStatementTimeout: DefaultStatementTimeout.String(),
		KeyHTTPReadTimeout:  DefaultHTTPReadTimeout.String(),
		KeyHTTPWriteTimeout: DefaultHTTPWriteTimeout.String(),
		KeyViewRowLimit:     DefaultViewRowLimit,
	}
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Runtime is the configuration the process runs with, read from settings.
type Runtime struct {
	Log              LogConfig
	StatementTimeout time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	ViewRowLimit     int
}

// Load reads the runtime configuration, falling back to defaults for missing
// or invalid values. A nil loader yields the defaults.
func Load(l *Loader) *Runtime {
	rt := &Runtime{
		Log: LogConfig{
			MaxSizeMB:  l.Int(KeyLogMaxSizeMB, DefaultLogMaxSizeMB),
			MaxBackups: l.Int(KeyLogMaxBackups, DefaultLogMaxBackups),
			MaxAgeDays: l.Int(KeyLogMaxAgeDays, DefaultLogMaxAgeDays),
			Compress:   l.Bool(KeyLogCompress, DefaultLogCompress),
		},
		StatementTimeout: l.Duration(KeyStatementTimeout, DefaultStatementTimeout),
		HTTPReadTimeout:  l.Duration(KeyHTTPReadTimeout, DefaultHTTPReadTimeout),
		HTTPWriteTimeout: l.Duration(KeyHTTPWriteTimeout, DefaultHTTPWriteTimeout),
		ViewRowLimit:     l.Int(KeyViewRowLimit, DefaultViewRowLimit),
	}

	if rt.Log.MaxSizeMB <= 0 {
		rt.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if rt.Log.MaxBackups < 0 {
		rt.Log.MaxBackups = DefaultLogMaxBackups
	}
	if rt.Log.MaxAgeDays < 0 {
		rt.Log.MaxAgeDays = DefaultLogMaxAgeDays
	}
	if rt.ViewRowLimit < 0 {
		rt.ViewRowLimit = DefaultViewRowLimit
	}
	return rt
}
