package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcampanini/awr/internal/config"
)

func restoreDefaultLogger(t *testing.T) {
	t.Helper()
	prev := clog.Default()
	t.Cleanup(func() { clog.SetDefault(prev) })
}

func TestSetupLogging_File(t *testing.T) {
	restoreDefaultLogger(t)
	path := filepath.Join(t.TempDir(), "logs", "awr.log")

	closer, err := setupLogging(config.LogConfig{File: path, Level: "debug", MaxBackups: 1, MaxSizeMB: 1}, &bytes.Buffer{})
	require.NoError(t, err)

	clog.Default().WithPrefix("test").Debug("hello", "key", "value")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "key=value")
}

func TestSetupLogging_FallbackAndLevel(t *testing.T) {
	restoreDefaultLogger(t)
	var buf bytes.Buffer

	closer, err := setupLogging(config.LogConfig{Level: "error"}, &buf)
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	clog.Warn("quiet please")
	clog.Error("loud")

	assert.NotContains(t, buf.String(), "quiet please")
	assert.Contains(t, buf.String(), "loud")
}

func TestSetupLogging_InvalidLevel(t *testing.T) {
	restoreDefaultLogger(t)

	_, err := setupLogging(config.LogConfig{Level: "chatty"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chatty")
}
