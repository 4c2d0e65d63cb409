// Package proxysql talks to a ProxySQL instance's admin interface over the
// MySQL protocol: stats and runtime tables for the dashboard views, reset
// statements for the destructive actions, and the daemon's log file for
// the logs page.
package proxysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/proxytop/proxytop/internal/classify"
	"github.com/proxytop/proxytop/internal/page"
	"github.com/proxytop/proxytop/internal/timeseries"
)

// Options configures the provider. All fields are read-only after New.
type Options struct {
	Addr     string // host:port of the admin interface
	User     string
	Password string

	ExcludedUsers    []string
	SlowQueryMinMS   int
	SlowQueryMaxRows int

	ConnScale classify.Scale
	RateScale classify.Scale

	QueryTimeout time.Duration
}

// Provider fetches dashboard rows from the admin interface. Fetch runs on
// background workers, so the rule-hit rate state is mutex-guarded.
type Provider struct {
	db     *sql.DB
	opts   Options
	logger *slog.Logger

	mu        sync.Mutex
	ruleRates map[int64]*timeseries.RateCounter
}

// New opens a connection pool against the admin interface. The pool is
// deliberately small: the dashboard issues at most a couple of queries per
// tick.
func New(opts Options, logger *slog.Logger) (*Provider, error) {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = opts.Addr
	cfg.User = opts.User
	cfg.Passwd = opts.Password
	cfg.Timeout = 5 * time.Second
	cfg.ReadTimeout = opts.QueryTimeout
	cfg.InterpolateParams = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open admin connection: %w", err)
	}
	db.SetMaxOpenConns(3)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Provider{
		db:        db,
		opts:      opts,
		logger:    logger,
		ruleRates: make(map[int64]*timeseries.RateCounter),
	}, nil
}

// Ping verifies the admin interface is reachable.
func (p *Provider) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close releases the connection pool.
func (p *Provider) Close() error {
	return p.db.Close()
}

// Version returns the server's version comment, or "unknown".
func (p *Provider) Version(ctx context.Context) string {
	var v string
	if err := p.db.QueryRowContext(ctx, queryVersion).Scan(&v); err != nil {
		p.logger.Debug("version query failed", "error", err)
		return "unknown"
	}
	return v
}

// Fetch returns the rows for one view. Failures leave the caller's last
// good rows in place; the error is surfaced as a status indicator only.
func (p *Provider) Fetch(ctx context.Context, id page.ViewID) ([]page.Row, error) {
	q, ok := p.queryFor(id)
	if !ok {
		return nil, fmt.Errorf("view %s is not query-backed", id)
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.QueryTimeout)
	defer cancel()

	recs, err := p.queryStrings(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}

	switch id {
	case page.ViewConnsUserHost:
		return p.buildConnsUserHost(recs), nil
	case page.ViewConnsByUser:
		return p.buildConnsByUser(recs), nil
	case page.ViewConnsByHost:
		return p.buildConnsByHost(recs), nil
	case page.ViewSlowQueries:
		return p.buildSlowQueries(recs), nil
	case page.ViewQueryPatterns:
		return p.buildQueryPatterns(recs), nil
	case page.ViewBackendPool:
		return p.buildBackendPool(recs), nil
	case page.ViewRuntimeUsers:
		return p.buildRuntimeUsers(recs), nil
	case page.ViewRuntimeRules:
		return p.buildRules(recs), nil
	case page.ViewRuntimeBackends:
		return p.buildRuntimeBackends(recs), nil
	case page.ViewHostgroups:
		return p.buildHostgroups(recs), nil
	default:
		// Name/value views share one builder.
		return buildNameValue(recs), nil
	}
}

// Counters fetches the tracked global counters as a name->value map.
func (p *Provider) Counters(ctx context.Context) (map[string]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.QueryTimeout)
	defer cancel()

	recs, err := p.queryStrings(ctx, counterQuery())
	if err != nil {
		return nil, fmt.Errorf("fetch counters: %w", err)
	}
	out := make(map[string]float64, len(recs))
	for _, r := range recs {
		if len(r) == 2 {
			out[r[0]] = atof(r[1])
		}
	}
	return out, nil
}

// queryStrings runs a query and returns every cell as a string, with SQL
// NULL mapped to the empty string. The admin tables are all small and
// text-friendly, and the views format everything for display anyway.
func (p *Provider) queryStrings(ctx context.Context, q string) ([][]string, error) {
	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				rec[i] = v.String
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// Row builders
// =============================================================================

func searchText(cells ...string) string {
	return strings.ToLower(strings.Join(cells, " "))
}

func (p *Provider) buildConnsUserHost(recs [][]string) []page.Row {
	rows := make([]page.Row, 0, len(recs))
	for _, r := range recs {
		if len(r) < 5 {
			continue
		}
		user, addr := displayText(r[0]), displayText(r[1])
		total, active := atof(r[2]), atof(r[3])
		level := classify.Connections(total, active, p.opts.ConnScale)
		rows = append(rows, page.Row{
			Cells:      []string{level.Badge(), user, addr, r[2], r[3], r[4]},
			Level:      level,
			Leveled:    true,
			Addr:       r[1],
			SearchText: searchText(user, addr, level.Label()),
		})
	}
	return rows
}

func (p *Provider) buildConnsByUser(recs [][]string) []page.Row {
	rows := make([]page.Row, 0, len(recs))
	for _, r := range recs {
		if len(r) < 4 {
			continue
		}
		user := displayText(r[0])
		total, active := atof(r[1]), atof(r[2])
		level := classify.Connections(total, active, p.opts.ConnScale)
		rows = append(rows, page.Row{
			Cells:      []string{level.Badge(), user, r[1], r[2], r[3]},
			Level:      level,
			Leveled:    true,
			SearchText: searchText(user, level.Label()),
		})
	}
	return rows
}

func (p *Provider) buildConnsByHost(recs [][]string) []page.Row {
	rows := make([]page.Row, 0, len(recs))
	for _, r := range recs {
		if len(r) < 5 {
			continue
		}
		addr := displayText(r[0])
		total, active := atof(r[1]), atof(r[2])
		level := classify.Connections(total, active, p.opts.ConnScale)
		rows = append(rows, page.Row{
			Cells:      []string{level.Badge(), addr, r[1], r[2], r[3], r[4]},
			Level:      level,
			Leveled:    true,
			Addr:       r[0],
			SearchText: searchText(addr, level.Label()),
		})
	}
	return rows
}

// slowQueryLevel colors slow queries by elapsed time rather than by the
// connection scale.
func slowQueryLevel(ms float64) classify.Level {
	switch {
	case ms > 10_000:
		return classify.LevelSaturated
	case ms > 5_000:
		return classify.LevelBusy
	case ms > 1_000:
		return classify.LevelModerate
	default:
		return classify.LevelLight
	}
}

func (p *Provider) buildSlowQueries(recs [][]string) []page.Row {
	rows := make([]page.Row, 0, len(recs))
	for _, r := range recs {
		if len(r) < 8 {
			continue
		}
		ms := atof(r[6])
		server := r[1] + ":" + r[2]
		userDB := displayText(r[3]) + "@" + displayText(r[4])
		query := collapseSpaces(r[7])
		rows = append(rows, page.Row{
			Cells: []string{
				FormatTimeMS(ms), r[0], server, userDB, displayText(r[5]), query,
			},
			Level:      slowQueryLevel(ms),
			Leveled:    true,
			Addr:       r[1],
			SearchText: searchText(server, userDB, r[5], query),
		})
	}
	return rows
}

func (p *Provider) buildQueryPatterns(recs [][]string) []page.Row {
	rows := make([]page.Row, 0, len(recs))
	for i, r := range recs {
		if len(r) < 6 {
			continue
		}
		pattern := collapseSpaces(displayText(r[0]))
		user, schema := displayText(r[2]), displayText(r[1])
		rows = append(rows, page.Row{
			Cells: []string{
				fmt.Sprintf("#%d", i+1),
				FormatCount(atoi(r[3])),
				fmt.Sprintf("%.2f", atof(r[5])),
				fmt.Sprintf("%.0f", atof(r[4])),
				user, schema, pattern,
			},
			SearchText: searchText(user, schema, pattern),
		})
	}
	return rows
}

func (p *Provider) buildBackendPool(recs [][]string) []page.Row {
	// Load is each server's share of the pool's total queries, so the
	// denominator comes from a first pass.
	var totalQueries float64
	for _, r := range recs {
		if len(r) >= 13 {
			totalQueries += atof(r[8])
		}
	}

	rows := make([]page.Row, 0, len(recs))
	for _, r := range recs {
		if len(r) < 13 {
			continue
		}
		state := displayText(r[3])
		used, free := atof(r[5]), atof(r[6])
		var level classify.Level
		switch strings.ToUpper(state) {
		case "OFFLINE_SOFT", "OFFLINE_HARD", "SHUNNED":
			level = classify.LevelSaturated
		default:
			level = classify.Connections(used+free, used, p.opts.ConnScale)
		}
		load := float64(0)
		if totalQueries > 0 {
			load = atof(r[8]) / totalQueries * 100
		}
		server := displayText(r[1])
		rows = append(rows, page.Row{
			Cells: []string{
				level.Badge(), r[0], server, r[2], state, r[4],
				fmt.Sprintf("%.0f/%.0f", used, used+free),
				r[12],
				fmt.Sprintf("%.0f%%", load),
				FormatCount(atoi(r[8])),
				r[7],
				FormatLatencyUS(atoi(r[11])),
				FormatBytes(atoi(r[9])),
				FormatBytes(atoi(r[10])),
			},
			Level:      level,
			Leveled:    true,
			Addr:       r[1],
			SearchText: searchText(server, state, r[0], level.Label()),
		})
	}
	return rows
}

func (p *Provider) buildRuntimeUsers(recs [][]string) []page.Row {
	rows := make([]page.Row, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		if len(r) < 9 {
			continue
		}
		user := r[0]
		// The runtime table lists backend and frontend entries; keep one.
		if _, dup := seen[user]; dup {
			continue
		}
		seen[user] = struct{}{}
		rows = append(rows, page.Row{
			Cells: []string{
				displayText(user), truncatePassword(r[1]), boolLabel(r[2]),
				boolLabel(r[3]), r[4], displayText(r[5]), boolLabel(r[6]),
				r[7], displayText(r[8]),
			},
			SearchText: searchText(user, r[5], r[8]),
		})
	}
	return rows
}

// ruleRate converts a rule's cumulative hit counter to hits/sec between
// refreshes of this view.
func (p *Provider) ruleRate(ruleID int64, hits float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	rc, ok := p.ruleRates[ruleID]
	if !ok {
		rc = timeseries.NewRateCounter()
		p.ruleRates[ruleID] = rc
	}
	return rc.Observe(hits)
}

func (p *Provider) buildRules(recs [][]string) []page.Row {
	rows := make([]page.Row, 0, len(recs))
	for _, r := range recs {
		if len(r) < 9 {
			continue
		}
		hitsPerSec := p.ruleRate(atoi(r[0]), atof(r[8]))
		level := classify.Rate(hitsPerSec, p.opts.RateScale)
		match := displayText(r[5])
		if match == "-" {
			match = displayText(r[4])
		}
		rows = append(rows, page.Row{
			Cells: []string{
				level.RateBadge(), r[0], boolLabel(r[1]), displayText(r[2]),
				boolLabel(r[3]), FormatCount(atoi(r[8])), displayText(r[4]),
				match, displayText(r[6]), displayText(r[7]),
			},
			Level:      level,
			Leveled:    true,
			SearchText: searchText(r[0], match, r[6], r[7], level.RateLabel()),
		})
	}
	return rows
}

func (p *Provider) buildRuntimeBackends(recs [][]string) []page.Row {
	rows := make([]page.Row, 0, len(recs))
	for _, r := range recs {
		if len(r) < 10 {
			continue
		}
		server := displayText(r[1])
		rows = append(rows, page.Row{
			Cells: []string{
				r[0], server, r[2], displayText(r[3]), r[4], r[5],
				r[6], r[7], boolLabel(r[8]), r[9],
			},
			Addr:       r[1],
			SearchText: searchText(server, r[3], r[0]),
		})
	}
	return rows
}

func (p *Provider) buildHostgroups(recs [][]string) []page.Row {
	rows := make([]page.Row, 0, len(recs))
	for _, r := range recs {
		if len(r) < 4 {
			continue
		}
		rows = append(rows, page.Row{
			Cells:      []string{r[0], r[1], displayText(r[2]), displayText(r[3])},
			SearchText: searchText(r[0], r[1], r[2], r[3]),
		})
	}
	return rows
}

func buildNameValue(recs [][]string) []page.Row {
	rows := make([]page.Row, 0, len(recs))
	for _, r := range recs {
		if len(r) < 2 {
			continue
		}
		rows = append(rows, page.Row{
			Cells:      []string{r[0], displayText(r[1])},
			SearchText: searchText(r[0], r[1]),
		})
	}
	return rows
}
