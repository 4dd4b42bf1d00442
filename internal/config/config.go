// Package config handles configuration loading and validation for filewatch.
//
// The file to watch is always given on the command line. The configuration
// file only tunes which events count as a change, how reports are separated
// and where logs go. A missing configuration file means defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"filewatch/internal/diff"
	"filewatch/internal/logging"
	"filewatch/internal/watcher"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete filewatch configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Watch configures the event source.
	Watch WatchConfig `toml:"watch" json:"watch" yaml:"watch"`

	// Report configures diff report output.
	Report ReportConfig `toml:"report" json:"report" yaml:"report"`

	// Logging configures diagnostic logs.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// WatchConfig holds event source configuration.
type WatchConfig struct {
	// Events lists the operations that trigger a re-read:
	// "write", "create", "remove", "rename", "chmod".
	Events []string `toml:"events" json:"events" yaml:"events"`
}

// ReportConfig holds report output configuration.
type ReportConfig struct {
	// Separator is printed before every report.
	Separator string `toml:"separator" json:"separator" yaml:"separator"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is "stdout", "stderr", "file" or "both".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file when Output is "file" or "both".
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB is the log file size that triggers rotation.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of rotated log files to keep.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`

	// MaxAgeDays is how long rotated log files are kept.
	MaxAgeDays int `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`

	// Compress gzips rotated log files.
	Compress bool `toml:"compress" json:"compress" yaml:"compress"`
}

// Error reports a configuration that could not be loaded or is invalid.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Watch: WatchConfig{
			Events: []string{"write", "create"},
		},
		Report: ReportConfig{
			Separator: diff.DefaultSeparator,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   logging.DefaultLogPath(),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// ConfigPath returns the configuration file path: $FILEWATCH_CONFIG if set,
// otherwise config.toml in the user configuration directory.
func ConfigPath() string {
	if v := os.Getenv("FILEWATCH_CONFIG"); v != "" {
		return v
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "filewatch", "config.toml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		dir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(dir, "filewatch", "config.toml")
}

// ApplyEnvOverrides applies FILEWATCH_* environment variables. A value that
// cannot be parsed is reported and leaves the setting unchanged.
func (c *Config) ApplyEnvOverrides() error {
	if v := os.Getenv("FILEWATCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FILEWATCH_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("FILEWATCH_LOG_OUTPUT"); v != "" {
		c.Logging.Output = v
	}
	if v := os.Getenv("FILEWATCH_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
	if v := os.Getenv("FILEWATCH_LOG_MAX_SIZE_MB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FILEWATCH_LOG_MAX_SIZE_MB: invalid integer %q", v)
		}
		c.Logging.MaxSizeMB = n
	}
	if v := os.Getenv("FILEWATCH_SEPARATOR"); v != "" {
		c.Report.Separator = v
	}
	return nil
}

// normalize lowercases the enumerated settings. The parsers accept any
// case, and the schema checks the lowercased form.
func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	for i, name := range c.Watch.Events {
		c.Watch.Events[i] = strings.ToLower(name)
	}
}

// WatcherOptions converts the watch section into watcher options.
func (c *Config) WatcherOptions() (watcher.Options, error) {
	ops, err := watcher.ParseOps(c.Watch.Events)
	if err != nil {
		return watcher.Options{}, err
	}
	return watcher.Options{Ops: ops}, nil
}

// LoggerConfig converts the logging section into a logging.Config.
func (c *Config) LoggerConfig() (*logging.Config, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return nil, err
	}

	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = format
	lc.Output = c.Logging.Output
	lc.FilePath = c.Logging.FilePath
	lc.MaxSize = int64(c.Logging.MaxSizeMB)
	lc.MaxBackups = c.Logging.MaxBackups
	lc.MaxAge = c.Logging.MaxAgeDays
	lc.Compress = c.Logging.Compress
	return lc, nil
}
