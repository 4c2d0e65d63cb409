package proxysql

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/proxytop/proxytop/internal/page"
)

// LogLevel is the parsed severity of one daemon log line.
type LogLevel string

const (
	LogError LogLevel = "ERROR"
	LogWarn  LogLevel = "WARN"
	LogInfo  LogLevel = "INFO"
	LogDebug LogLevel = "DEBUG"
)

// LogEntry is one parsed line from the daemon log.
type LogEntry struct {
	Timestamp string
	Level     LogLevel
	Message   string
}

// noiseWords mark lines that are table dumps or config echoes rather than
// log messages; those are skipped.
var noiseWords = []string{
	"hostname", "port", "gtid", "weight", "status", "cmp",
	"max_conns", "max_lag", "ssl", "max_lat", "comment",
	"checksum for table",
}

const tailChunk = 64 * 1024

// TailLog reads up to maxLines recent entries from the daemon's log file,
// newest last. A missing or unreadable file is not an error to the user;
// it returns a single synthetic entry explaining the problem.
func TailLog(path string, maxLines int) []LogEntry {
	lines, err := tailLines(path, maxLines)
	if err != nil {
		return []LogEntry{{
			Level:   LogError,
			Message: "could not read log file: " + err.Error(),
		}}
	}

	entries := make([]LogEntry, 0, len(lines))
	for _, line := range lines {
		if e, ok := ParseLogLine(line); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// tailLines returns the last n lines of the file, reading only the tail.
func tailLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	// Read a chunk from the end large enough for n lines of typical length.
	size := info.Size()
	offset := size - tailChunk
	if offset < 0 {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	if offset > 0 {
		// Drop the partial first line.
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			data = data[i+1:]
		}
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// ParseLogLine parses one daemon log line. Lines that do not start with a
// "YYYY-MM-DD HH:MM:SS" timestamp, or that look like table dumps, are
// rejected.
func ParseLogLine(line string) (LogEntry, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return LogEntry{}, false
	}

	lower := strings.ToLower(trimmed)
	for _, w := range noiseWords {
		if strings.Contains(lower, w) {
			return LogEntry{}, false
		}
	}

	if !hasTimestampPrefix(trimmed) {
		return LogEntry{}, false
	}

	parts := strings.SplitN(trimmed, " ", 3)
	if len(parts) < 3 {
		return LogEntry{}, false
	}

	msg := parts[2]
	upper := strings.ToUpper(msg)
	level := LogInfo
	switch {
	case strings.Contains(upper, "[ERROR]"):
		level = LogError
	case strings.Contains(upper, "[WARN]"), strings.Contains(upper, "[WARNING]"):
		level = LogWarn
	case strings.Contains(upper, "[DEBUG]"):
		level = LogDebug
	}

	return LogEntry{
		Timestamp: parts[0] + " " + parts[1],
		Level:     level,
		Message:   msg,
	}, true
}

// hasTimestampPrefix checks the fixed positions of the daemon's timestamp
// format: "2025-01-02 15:04:05".
func hasTimestampPrefix(line string) bool {
	if len(line) < 20 {
		return false
	}
	return line[4] == '-' && line[7] == '-' && line[10] == ' ' &&
		line[13] == ':' && line[16] == ':'
}

// LogRows converts entries to table rows for the logs view.
func LogRows(entries []LogEntry) []page.Row {
	rows := make([]page.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, page.Row{
			Cells:      []string{e.Timestamp, string(e.Level), e.Message},
			SearchText: searchText(e.Timestamp, string(e.Level), e.Message),
		})
	}
	return rows
}
