package config

import (
	"errors"
	"time"
)

// Config represents the complete awr configuration.
type Config struct {
	Approval ApprovalConfig `toml:"approval"`
	AWS      AWSConfig      `toml:"aws"`
	Cache    CacheConfig    `toml:"cache"`
	Log      LogConfig      `toml:"log"`
	State    StateConfig    `toml:"state"`
}

// Validate checks that all config values are valid.
// Returns an error describing the first invalid value found.
func (c Config) Validate() error {
	if c.AWS.Binary == "" {
		return errors.New("aws.binary cannot be empty")
	}
	if c.AWS.Timeout <= 0 {
		return errors.New("aws.timeout must be positive")
	}
	if c.AWS.MaxExecutions < 0 {
		return errors.New("aws.max_executions cannot be negative")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	if c.Log.MaxSizeMB < 0 {
		return errors.New("log.max_size_mb cannot be negative")
	}
	if c.Log.MaxBackups < 0 {
		return errors.New("log.max_backups cannot be negative")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.New("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// ApprovalConfig configures the summaries attached to pipeline approval commands.
type ApprovalConfig struct {
	ApproveSummary string `toml:"approve_summary"`
	RejectSummary  string `toml:"reject_summary"`
}

// AWSConfig configures aws CLI execution.
type AWSConfig struct {
	Binary        string        `toml:"binary"`         // e.g., "aws" or an absolute path
	MaxExecutions int           `toml:"max_executions"` // recent pipeline executions to list
	Profile       string        `toml:"profile"`        // forces the starting profile when set
	Region        string        `toml:"region"`         // empty uses the profile's region
	Timeout       time.Duration `toml:"timeout"`        // Timeout for each aws call (e.g., "30s")
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	// ClearOnProfileSwitch drops the previous profile's entries when switching.
	ClearOnProfileSwitch bool          `toml:"clear_on_profile_switch"`
	Dir                  string        `toml:"dir"`
	TTL                  time.Duration `toml:"ttl"` // 0 disables caching
}

// LogConfig configures the log file.
type LogConfig struct {
	File       string `toml:"file"`
	Level      string `toml:"level"`
	MaxBackups int    `toml:"max_backups"`
	MaxSizeMB  int    `toml:"max_size_mb"`
}

// StateConfig configures where the last selection is persisted.
type StateConfig struct {
	Path string `toml:"path"`
}
