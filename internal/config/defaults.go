package config

import (
	"os"
	"path/filepath"
	"time"
)

const appName = "awr"

// DefaultConfig returns sensible defaults for all configuration.
// File locations are left empty and filled in by WithDefaultPaths.
func DefaultConfig() Config {
	return Config{
		Approval: ApprovalConfig{
			ApproveSummary: "Approved via awr",
			RejectSummary:  "Rejected via awr",
		},
		AWS: AWSConfig{
			Binary:        "aws",
			MaxExecutions: 10,
			Timeout:       30 * time.Second,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Log: LogConfig{
			Level:      "info",
			MaxBackups: 3,
			MaxSizeMB:  5,
		},
	}
}

// Dirs are the per-user base directories file locations derive from.
type Dirs struct {
	Cache  string
	Config string
	Home   string
}

// UserDirs resolves the current user's base directories. A directory that
// cannot be determined is left empty.
func UserDirs() Dirs {
	var d Dirs
	if dir, err := os.UserCacheDir(); err == nil {
		d.Cache = dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		d.Config = dir
	}
	if dir, err := os.UserHomeDir(); err == nil {
		d.Home = dir
	}
	return d
}

// WithDefaultPaths fills in every file location the config leaves empty.
//
//	cache: <cache>/awr/cache
//	log:   <cache>/awr/awr.log
//	state: <config>/awr/state.json
//
// When a base directory is unknown the home directory is used instead.
func (c Config) WithDefaultPaths(d Dirs) Config {
	cacheBase := d.Cache
	if cacheBase == "" && d.Home != "" {
		cacheBase = filepath.Join(d.Home, ".cache")
	}
	configBase := d.Config
	if configBase == "" && d.Home != "" {
		configBase = filepath.Join(d.Home, ".config")
	}

	if c.Cache.Dir == "" && cacheBase != "" {
		c.Cache.Dir = filepath.Join(cacheBase, appName, "cache")
	}
	if c.Log.File == "" && cacheBase != "" {
		c.Log.File = filepath.Join(cacheBase, appName, appName+".log")
	}
	if c.State.Path == "" && configBase != "" {
		c.State.Path = filepath.Join(configBase, appName, "state.json")
	}
	return c
}
