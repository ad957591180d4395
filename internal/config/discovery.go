package config

import (
	"path/filepath"
)

const configFileName = "awr.toml"

// ConfigPaths returns ordered list of config file paths to check.
// Paths are ordered from lowest to highest priority, so that when decoded
// sequentially, each subsequent file overrides values from previous files.
//
// Order (lowest to highest priority):
//  1. File in the user config directory (~/.config/awr/awr.toml)
//  2. Dotfile in the home directory (~/.awr.toml)
//
// Empty directories are skipped.
func ConfigPaths(configDir, homeDir string) []string {
	var paths []string
	seen := make(map[string]bool)

	addPath := func(path string) {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	if configDir != "" {
		addPath(filepath.Join(configDir, appName, configFileName))
	}
	if homeDir != "" {
		addPath(filepath.Join(homeDir, "."+configFileName))
	}

	return paths
}
