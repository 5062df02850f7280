package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/filer/pkg/pagination"
)

const (
	EnvLogLevel       = "FILER_LOG_LEVEL"
	EnvLogFormat      = "FILER_LOG_FORMAT"
	EnvLogFile        = "FILER_LOG_FILE"
	EnvMetricsAddr    = "FILER_METRICS_ADDR"
	EnvJournalEnabled = "FILER_JOURNAL_ENABLED"
)

var paginationEnv = &pagination.Env{
	DefaultPageSize: "FILER_JOURNAL_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "FILER_JOURNAL_MAX_PAGE_SIZE",
}

// Log output formats.
const (
	LogFormatTint = "tint"
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LoggingConfig controls the process logger. File, when set, receives a copy
// of every record in addition to stderr.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// SlogLevel returns Level as a slog.Level.
func (c *LoggingConfig) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func (c *LoggingConfig) Finalize() error {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = LogFormatTint
	}

	envString(EnvLogLevel, &c.Level)
	envString(EnvLogFormat, &c.Format)
	envString(EnvLogFile, &c.File)

	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return fmt.Errorf("invalid level: %q", c.Level)
	}

	switch strings.ToLower(c.Format) {
	case LogFormatTint, LogFormatText, LogFormatJSON:
		c.Format = strings.ToLower(c.Format)
	default:
		return fmt.Errorf("unsupported format: %q", c.Format)
	}
	return nil
}

func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	mergeString(&c.Level, overlay.Level)
	mergeString(&c.Format, overlay.Format)
	mergeString(&c.File, overlay.File)
}

// MetricsConfig controls the Prometheus listener. An empty Addr disables the
// listener; counters are still collected.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

func (c *MetricsConfig) Finalize() error {
	envString(EnvMetricsAddr, &c.Addr)
	return nil
}

func (c *MetricsConfig) Merge(overlay *MetricsConfig) {
	mergeString(&c.Addr, overlay.Addr)
}

// JournalConfig enables the PostgreSQL run journal and sizes history pages.
type JournalConfig struct {
	Enabled    bool              `toml:"enabled"`
	Pagination pagination.Config `toml:"pagination"`
}

func (c *JournalConfig) Finalize() error {
	if v := os.Getenv(EnvJournalEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvJournalEnabled, err)
		}
		c.Enabled = enabled
	}

	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge enables the journal when the overlay enables it. An overlay cannot
// disable a journal the base file enabled; use FILER_JOURNAL_ENABLED.
func (c *JournalConfig) Merge(overlay *JournalConfig) {
	if overlay.Enabled {
		c.Enabled = true
	}
	c.Pagination.Merge(&overlay.Pagination)
}
