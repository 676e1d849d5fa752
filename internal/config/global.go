// Package config provides configuration loading and validation for broadcast.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/tessro/broadcast/internal/paths"
)

// GlobalConfig represents the global broadcast configuration.
type GlobalConfig struct {
	// LogLevel is the slog level name ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level" env:"BROADCAST_LOG_LEVEL"`
	// LogFile overrides the default log path.
	LogFile string `toml:"log_file" env:"BROADCAST_LOG_FILE"`

	Run  RunConfig  `toml:"run"`
	REPL REPLConfig `toml:"repl"`
}

// RunConfig contains defaults for `broadcast run`.
type RunConfig struct {
	// Format is the transcript format ("text", "markdown" or "html").
	Format string `toml:"format" env:"BROADCAST_FORMAT"`
	// Strict aborts a run on the first failed trigger.
	Strict bool `toml:"strict" env:"BROADCAST_STRICT"`
}

// REPLConfig contains settings for the interactive REPL.
type REPLConfig struct {
	HistorySize int `toml:"history_size"`
	MaxLogLines int `toml:"max_log_lines"`
}

// Defaults.
const (
	DefaultLogLevel    = "info"
	DefaultFormat      = "text"
	DefaultHistorySize = 100
	DefaultMaxLogLines = 1000
)

// LoadGlobalConfig loads the global configuration from paths.ConfigPath()
// and applies environment overrides. Never returns a nil config without an error.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path, err := paths.ConfigPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load reads path (when it exists), applies environment overrides and validates.
func Load(path string) (*GlobalConfig, error) {
	cfg, err := LoadGlobalConfigFromPath(path)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &GlobalConfig{}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadGlobalConfigFromPath loads the global config from a specific path.
// Returns nil config and nil error if the file doesn't exist.
func LoadGlobalConfigFromPath(path string) (*GlobalConfig, error) {
	var cfg GlobalConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overlays BROADCAST_* environment variables onto cfg.
func ApplyEnv(cfg *GlobalConfig) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// GetLogLevel returns the configured log level or the default.
func (c *GlobalConfig) GetLogLevel() string {
	if c != nil && c.LogLevel != "" {
		return c.LogLevel
	}
	return DefaultLogLevel
}

// GetLogFile returns the configured log file or paths.LogPath().
func (c *GlobalConfig) GetLogFile() string {
	if c != nil && c.LogFile != "" {
		return c.LogFile
	}
	return paths.LogPath()
}

// GetFormat returns the configured transcript format or the default.
func (c *GlobalConfig) GetFormat() string {
	if c != nil && c.Run.Format != "" {
		return c.Run.Format
	}
	return DefaultFormat
}

// IsStrict reports whether runs abort on the first failed trigger.
func (c *GlobalConfig) IsStrict() bool {
	return c != nil && c.Run.Strict
}

// GetHistorySize returns the REPL history size or the default.
func (c *GlobalConfig) GetHistorySize() int {
	if c != nil && c.REPL.HistorySize > 0 {
		return c.REPL.HistorySize
	}
	return DefaultHistorySize
}

// GetMaxLogLines returns the REPL event log cap or the default.
func (c *GlobalConfig) GetMaxLogLines() int {
	if c != nil && c.REPL.MaxLogLines > 0 {
		return c.REPL.MaxLogLines
	}
	return DefaultMaxLogLines
}
