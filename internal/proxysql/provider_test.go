package proxysql

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/proxytop/proxytop/internal/classify"
	"github.com/proxytop/proxytop/internal/timeseries"
)

func testProvider() *Provider {
	return &Provider{
		opts: Options{
			ExcludedUsers:    []string{"monitor", "proxysql-admin"},
			SlowQueryMinMS:   10,
			SlowQueryMaxRows: 50,
			ConnScale:        classify.ConnectionScale(10, 50, 100),
			RateScale:        classify.RateScale(1000, 10000, 100000),
			QueryTimeout:     2 * time.Second,
		},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		ruleRates: make(map[int64]*timeseries.RateCounter),
	}
}

// =============================================================================
// Query assembly
// =============================================================================

func TestUserFilter(t *testing.T) {
	users := []string{"monitor", "it's"}

	if got := userFilter(nil, ""); got != "" {
		t.Errorf("empty users, plain lead = %q", got)
	}
	if got := userFilter(nil, "WHERE"); got != "WHERE" {
		t.Errorf("empty users, WHERE lead = %q", got)
	}
	if got := userFilter(users, ""); got != `WHERE user NOT IN ('monitor', 'it''s')` {
		t.Errorf("plain lead = %q", got)
	}
	if got := userFilter(users, "WHERE"); got != `WHERE user NOT IN ('monitor', 'it''s') AND` {
		t.Errorf("WHERE lead = %q", got)
	}
	if got := userFilter(users, "AND"); got != `AND u.username NOT IN ('monitor', 'it''s')` {
		t.Errorf("AND lead = %q", got)
	}
}

func TestQueryFor(t *testing.T) {
	p := testProvider()

	q, ok := p.queryFor("frontend/conns-user-host")
	if !ok {
		t.Fatal("conns view should be query-backed")
	}
	if !strings.Contains(q, "stats_mysql_processlist") ||
		!strings.Contains(q, "'monitor'") {
		t.Errorf("query missing table or excluded users:\n%s", q)
	}

	q, ok = p.queryFor("frontend/slow-queries")
	if !ok || !strings.Contains(q, "time_ms > 10") || !strings.Contains(q, "LIMIT 50") {
		t.Errorf("slow query thresholds not applied:\n%s", q)
	}

	if _, ok := p.queryFor("logs"); ok {
		t.Error("logs view must not be query-backed")
	}
	if _, ok := p.queryFor("performance"); ok {
		t.Error("performance view must not be query-backed")
	}
}

// =============================================================================
// Row builders
// =============================================================================

func TestBuildConnsUserHost(t *testing.T) {
	p := testProvider()
	rows := p.buildConnsUserHost([][]string{
		{"app_user", "10.0.1.5", "120", "75", "45"},
		{"batch", "10.0.2.9", "4", "0", "4"},
		{"", "", "0", "0", "0"},
		{"short"}, // malformed, skipped
	})

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	if rows[0].Level != classify.LevelModerate {
		t.Errorf("busy user level = %v", rows[0].Level.Label())
	}
	if rows[0].Cells[0] != classify.LevelModerate.Badge() {
		t.Errorf("badge cell = %q", rows[0].Cells[0])
	}
	if rows[0].Addr != "10.0.1.5" {
		t.Errorf("Addr = %q", rows[0].Addr)
	}
	if !strings.Contains(rows[0].SearchText, "app_user") ||
		!strings.Contains(rows[0].SearchText, "10.0.1.5") {
		t.Errorf("search text = %q", rows[0].SearchText)
	}

	if rows[1].Level != classify.LevelIdle {
		t.Errorf("idle user level = %v", rows[1].Level.Label())
	}
	if rows[2].Level != classify.LevelQuiet {
		t.Errorf("no-conn user level = %v", rows[2].Level.Label())
	}
	if rows[2].Cells[1] != "-" {
		t.Errorf("empty username cell = %q, want -", rows[2].Cells[1])
	}
}

func TestBuildSlowQueries(t *testing.T) {
	p := testProvider()
	rows := p.buildSlowQueries([][]string{
		{"1", "db-01", "3306", "app", "orders", "Query", "12500",
			"SELECT *\n  FROM orders\n  WHERE id = 1"},
	})

	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.Cells[0] != "12.5s" {
		t.Errorf("time cell = %q", r.Cells[0])
	}
	if r.Cells[2] != "db-01:3306" {
		t.Errorf("server cell = %q", r.Cells[2])
	}
	if r.Cells[3] != "app@orders" {
		t.Errorf("user@db cell = %q", r.Cells[3])
	}
	if r.Cells[5] != "SELECT * FROM orders WHERE id = 1" {
		t.Errorf("query cell = %q", r.Cells[5])
	}
	if r.Level != classify.LevelSaturated {
		t.Errorf("level = %v, want Saturated for >10s", r.Level.Label())
	}
}

func TestBuildBackendPool(t *testing.T) {
	p := testProvider()
	rows := p.buildBackendPool([][]string{
		{"0", "10.1.0.10", "3306", "ONLINE", "1000", "60", "20", "2",
			"1500000", "1073741824", "2147483648", "250000", "55"},
		{"1", "10.1.0.11", "3306", "SHUNNED", "900", "0", "0", "9",
			"500000", "0", "0", "0", "0"},
	})

	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	online := rows[0]
	if online.Cells[6] != "60/80" {
		t.Errorf("conn cell = %q, want 60/80", online.Cells[6])
	}
	if online.Cells[7] != "55" {
		t.Errorf("clients cell = %q, want 55", online.Cells[7])
	}
	if online.Cells[8] != "75%" {
		t.Errorf("load cell = %q, want 75%%", online.Cells[8])
	}
	if online.Cells[9] != "1.5M" {
		t.Errorf("queries cell = %q", online.Cells[9])
	}
	if online.Cells[11] != "250ms" {
		t.Errorf("latency cell = %q", online.Cells[11])
	}
	if online.Level != classify.LevelModerate {
		t.Errorf("online level = %v", online.Level.Label())
	}

	if rows[1].Cells[8] != "25%" {
		t.Errorf("shunned load cell = %q, want 25%%", rows[1].Cells[8])
	}
	if rows[1].Level != classify.LevelSaturated {
		t.Errorf("shunned server level = %v, want Saturated", rows[1].Level.Label())
	}
}

func TestBuildRuntimeUsers_Deduplicates(t *testing.T) {
	p := testProvider()
	rec := []string{"app", "*94BDCEBE19083CE2A1F959FD02F964C7AF4CFC29",
		"1", "0", "0", "orders", "1", "1000", ""}
	rows := p.buildRuntimeUsers([][]string{rec, rec})

	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 after dedup", len(rows))
	}
	r := rows[0]
	if r.Cells[2] != "Yes" || r.Cells[3] != "No" {
		t.Errorf("flag cells = %q, %q", r.Cells[2], r.Cells[3])
	}
	if r.Cells[8] != "-" {
		t.Errorf("empty comment cell = %q, want -", r.Cells[8])
	}
}

func TestBuildRules_HitRate(t *testing.T) {
	p := testProvider()

	// First observation of a rule's counter reads as silent.
	rows := p.buildRules([][]string{
		{"10", "1", "2", "1", "^SELECT", "", "app", "read split", "50000"},
	})
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Level != classify.LevelSilent {
		t.Errorf("first-observation level = %v, want Silent", rows[0].Level.RateLabel())
	}
	if rows[0].Cells[5] != "50.0K" {
		t.Errorf("hits cell = %q", rows[0].Cells[5])
	}
	// match column falls back to match_digest when match_pattern is empty.
	if rows[0].Cells[7] != "^SELECT" {
		t.Errorf("match cell = %q", rows[0].Cells[7])
	}
}

func TestBuildNameValue(t *testing.T) {
	rows := buildNameValue([][]string{
		{"mysql-max_connections", "2048"},
		{"mysql-monitor_username", ""},
	})

	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Cells[1] != "2048" {
		t.Errorf("value cell = %q", rows[0].Cells[1])
	}
	if rows[1].Cells[1] != "-" {
		t.Errorf("empty value cell = %q, want -", rows[1].Cells[1])
	}
}
