// Package logging provides structured logging for proxytop.
//
// The dashboard owns the terminal while it runs, so logs never go to
// stderr. They go to a file when -log-path is set, otherwise they are
// discarded.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger creates a structured logger writing to w with the specified
// format and level. Format should be "json" or "text".
// Level should be "debug", "info", "warn", or "error".
func NewLogger(w io.Writer, format, level string, verbose bool) *slog.Logger {
	logLevel := parseLevel(level)
	if verbose {
		logLevel = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
		// Add source location for debug level
		AddSource: logLevel == slog.LevelDebug,
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		// Default to JSON for structured logging
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// Open returns the log sink for the given path. An empty path means
// logging is disabled and everything goes to io.Discard. Files are
// opened in append mode so restarts do not clobber earlier runs.
func Open(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{io.Discard}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// parseLevel converts a string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetDefault sets the default logger for the slog package.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
