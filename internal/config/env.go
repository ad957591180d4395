package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Environment variables that override config values.
const (
	EnvCacheDir = "AWR_CACHE_DIR"
	EnvCacheTTL = "AWR_CACHE_TTL"
	EnvDebug    = "AWR_DEBUG"
	EnvProfile  = "AWR_PROFILE"
	EnvQuiet    = "AWR_QUIET"
	EnvRegion   = "AWR_REGION"
	EnvTimeout  = "AWR_TIMEOUT"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg with any AWR_* variables that are set and non-empty.
// It returns the names of the variables that were applied.
func ApplyEnv(cfg Config, lookup LookupFunc) (Config, []string, error) {
	var applied []string
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			return "", false
		}
		applied = append(applied, key)
		return v, true
	}

	if v, ok := get(EnvTimeout); ok {
		d, err := ParseDuration(v)
		if err != nil {
			return cfg, nil, fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		cfg.AWS.Timeout = d
	}
	if v, ok := get(EnvCacheTTL); ok {
		d, err := ParseDuration(v)
		if err != nil {
			return cfg, nil, fmt.Errorf("invalid %s: %w", EnvCacheTTL, err)
		}
		cfg.Cache.TTL = d
	}
	if v, ok := get(EnvCacheDir); ok {
		cfg.Cache.Dir = v
	}
	if v, ok := get(EnvProfile); ok {
		cfg.AWS.Profile = v
	}
	if v, ok := get(EnvRegion); ok {
		cfg.AWS.Region = v
	}

	// AWR_DEBUG wins over AWR_QUIET when both are set.
	if v, ok := get(EnvQuiet); ok {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, nil, fmt.Errorf("invalid %s: %w", EnvQuiet, err)
		}
		if on {
			cfg.Log.Level = "error"
		}
	}
	if v, ok := get(EnvDebug); ok {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, nil, fmt.Errorf("invalid %s: %w", EnvDebug, err)
		}
		if on {
			cfg.Log.Level = "debug"
		}
	}

	return cfg, applied, nil
}

// ParseDuration accepts a Go duration ("90s", "5m") or a plain number of seconds.
func ParseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("expected a duration like 30s or a number of seconds, got %q", s)
	}
	return d, nil
}
