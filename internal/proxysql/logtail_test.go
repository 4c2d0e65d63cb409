package proxysql

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// ParseLogLine
// =============================================================================

func TestParseLogLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantOK    bool
		wantLevel LogLevel
		wantTS    string
	}{
		{
			name:      "error line",
			line:      "2025-03-01 12:34:56 MySQL_Monitor.cpp:1234:run(): [ERROR] connect failed",
			wantOK:    true,
			wantLevel: LogError,
			wantTS:    "2025-03-01 12:34:56",
		},
		{
			name:      "warning line",
			line:      "2025-03-01 12:34:57 [WARNING] unreachable backend",
			wantOK:    true,
			wantLevel: LogWarn,
			wantTS:    "2025-03-01 12:34:57",
		},
		{
			name:      "info by default",
			line:      "2025-03-01 12:34:58 Admin initialized in 0.1s",
			wantOK:    true,
			wantLevel: LogInfo,
			wantTS:    "2025-03-01 12:34:58",
		},
		{
			name:      "debug line",
			line:      "2025-03-01 12:34:59 [DEBUG] handshake done",
			wantOK:    true,
			wantLevel: LogDebug,
			wantTS:    "2025-03-01 12:34:59",
		},
		{name: "empty", line: "", wantOK: false},
		{name: "no timestamp", line: "Standard startup banner text goes here", wantOK: false},
		{name: "table dump noise", line: "2025-03-01 12:35:00 | hostname | 3306 |", wantOK: false},
		{name: "checksum noise", line: "2025-03-01 12:35:01 Checksum for table mysql_servers", wantOK: false},
		{name: "short line", line: "2025-03-01", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := ParseLogLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if e.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s", e.Level, tt.wantLevel)
			}
			if e.Timestamp != tt.wantTS {
				t.Errorf("timestamp = %q, want %q", e.Timestamp, tt.wantTS)
			}
		})
	}
}

// =============================================================================
// TailLog
// =============================================================================

func writeLog(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proxysql.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTailLog(t *testing.T) {
	path := writeLog(t, []string{
		"2025-03-01 10:00:00 [INFO] started",
		"startup banner without timestamp",
		"2025-03-01 10:00:01 [ERROR] backend down",
		"2025-03-01 10:00:02 [WARNING] retrying",
	})

	entries := TailLog(path, 100)
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	if entries[0].Level != LogInfo || entries[1].Level != LogError || entries[2].Level != LogWarn {
		t.Errorf("levels = %v %v %v", entries[0].Level, entries[1].Level, entries[2].Level)
	}
}

func TestTailLog_LimitsToRequestedLines(t *testing.T) {
	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, "2025-03-01 10:00:00 [INFO] message")
	}
	path := writeLog(t, lines)

	entries := TailLog(path, 10)
	if len(entries) != 10 {
		t.Errorf("entries = %d, want 10", len(entries))
	}
}

func TestTailLog_MissingFile(t *testing.T) {
	entries := TailLog(filepath.Join(t.TempDir(), "nope.log"), 10)
	if len(entries) != 1 || entries[0].Level != LogError {
		t.Fatalf("entries = %+v, want single synthetic error", entries)
	}
}
