package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},        // Default
		{"invalid", slog.LevelInfo}, // Default for unknown
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := parseLevel(tc.input)
			if result != tc.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tc.input, result, tc.expected)
			}
		})
	}
}

func TestNewLogger_Formats(t *testing.T) {
	testCases := []string{"json", "text", "JSON", "TEXT", "", "invalid"}

	for _, format := range testCases {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, format, "info", false)
			if logger == nil {
				t.Fatal("NewLogger returned nil")
			}
			logger.Info("hello")
			if buf.Len() == 0 {
				t.Error("expected output")
			}
		})
	}
}

func TestNewLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "json", "info", false)
	logger.Info("fetch_complete", "view", "backend/pool", "rows", 4)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record["msg"] != "fetch_complete" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["view"] != "backend/pool" {
		t.Errorf("view = %v", record["view"])
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "text", "error", false)
	logger.Debug("debug message")
	logger.Info("info message")

	if buf.Len() != 0 {
		t.Errorf("error-level logger logged below error: %q", buf.String())
	}

	logger.Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Error("error message not logged")
	}
}

func TestNewLogger_VerboseOverride(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "text", "error", true)
	logger.Debug("debug message")

	if !strings.Contains(buf.String(), "debug message") {
		t.Error("verbose logger should log debug messages")
	}
}

func TestOpen_EmptyPathDiscards(t *testing.T) {
	w, err := Open("")
	if err != nil {
		t.Fatalf("Open(\"\"): %v", err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("dropped")); err != nil {
		t.Errorf("discard writer returned error: %v", err)
	}
}

func TestOpen_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxytop.log")

	for _, line := range []string{"first\n", "second\n"} {
		w, err := Open(path)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first\nsecond\n" {
		t.Errorf("file contents = %q", string(data))
	}
}

func TestOpen_BadPath(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "x.log")); err == nil {
		t.Error("expected error for unwritable path")
	}
}
