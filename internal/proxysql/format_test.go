package proxysql

import "testing"

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{1234, "1.2K"},
		{5_600_000, "5.6M"},
		{2_300_000_000, "2.3B"},
	}

	for _, tt := range tests {
		if got := FormatCount(tt.n); got != tt.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatTimeMS(t *testing.T) {
	tests := []struct {
		ms   float64
		want string
	}{
		{0, "0ms"},
		{850, "850ms"},
		{1000, "1.0s"},
		{12500, "12.5s"},
		{60000, "1.0m"},
		{90000, "1.5m"},
	}

	for _, tt := range tests {
		if got := FormatTimeMS(tt.ms); got != tt.want {
			t.Errorf("FormatTimeMS(%v) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestFormatLatencyUS(t *testing.T) {
	tests := []struct {
		us   int64
		want string
	}{
		{0, "0ms"},
		{2000, "2ms"},
		{250_000, "250ms"},
		{1_500_000, "1.5s"},
	}

	for _, tt := range tests {
		if got := FormatLatencyUS(tt.us); got != tt.want {
			t.Errorf("FormatLatencyUS(%d) = %q, want %q", tt.us, got, tt.want)
		}
	}
}

func TestDisplayText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "-"},
		{"NULL", "-"},
		{"null", "-"},
		{"app_user", "app_user"},
	}

	for _, tt := range tests {
		if got := displayText(tt.in); got != tt.want {
			t.Errorf("displayText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCollapseSpaces(t *testing.T) {
	in := "SELECT *\n   FROM t\t WHERE  a = 1"
	want := "SELECT * FROM t WHERE a = 1"
	if got := collapseSpaces(in); got != want {
		t.Errorf("collapseSpaces = %q, want %q", got, want)
	}
}

func TestTruncatePassword(t *testing.T) {
	if got := truncatePassword(""); got != "-" {
		t.Errorf("empty password = %q, want -", got)
	}
	long := "*94BDCEBE19083CE2A1F959FD02F964C7AF4CFC29"
	got := truncatePassword(long)
	if len(got) != 22 || got[:20] != long[:20] {
		t.Errorf("truncatePassword(long) = %q", got)
	}
	if got := truncatePassword("short"); got != "short" {
		t.Errorf("truncatePassword(short) = %q", got)
	}
}
