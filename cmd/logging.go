package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	clog "github.com/charmbracelet/log"
	lj "gopkg.in/natefinch/lumberjack.v2"

	"github.com/jmcampanini/awr/internal/config"
)

const logMaxAgeDays = 14

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setupLogging points the default logger at the rotating log file, or at
// fallback when no file is configured. Menus own the terminal, so logs never
// go to stdout.
func setupLogging(cfg config.LogConfig, fallback io.Writer) (io.Closer, error) {
	level := clog.InfoLevel
	if cfg.Level != "" {
		parsed, err := clog.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var w io.Writer = fallback
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file := &lj.Logger{
			Filename:   cfg.File,
			MaxAge:     logMaxAgeDays,
			MaxBackups: cfg.MaxBackups,
			MaxSize:    cfg.MaxSizeMB,
		}
		w, closer = file, file
	}

	clog.SetDefault(clog.NewWithOptions(w, clog.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	}))
	return closer, nil
}
