package proxysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatCount renders large counters compactly: 1234 -> "1.2K".
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// FormatTimeMS renders a millisecond duration: 850 -> "850ms",
// 12500 -> "12.5s", 90000 -> "1.5m".
func FormatTimeMS(ms float64) string {
	switch {
	case ms >= 60_000:
		return fmt.Sprintf("%.1fm", ms/60_000)
	case ms >= 1_000:
		return fmt.Sprintf("%.1fs", ms/1_000)
	default:
		return fmt.Sprintf("%.0fms", ms)
	}
}

// FormatBytes renders a byte counter with a binary unit suffix.
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// FormatLatencyUS renders a microsecond latency in ms or s.
func FormatLatencyUS(us int64) string {
	ms := float64(us) / 1000
	if ms >= 1000 {
		return fmt.Sprintf("%.1fs", ms/1000)
	}
	return fmt.Sprintf("%.0fms", ms)
}

// displayText substitutes a dash for empty and literal NULL values.
func displayText(s string) string {
	if s == "" || strings.EqualFold(s, "NULL") {
		return "-"
	}
	return s
}

// collapseSpaces flattens a SQL text to a single line.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncatePassword shows the leading half of a password hash.
func truncatePassword(hash string) string {
	if hash == "" {
		return "-"
	}
	if len(hash) > 20 {
		return hash[:20] + ".."
	}
	return hash
}

func atoi(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

// boolLabel renders the admin tables' 0/1 flags.
func boolLabel(s string) string {
	if atoi(s) != 0 {
		return "Yes"
	}
	return "No"
}
