// Package page defines the dashboard's page catalog and per-view
// presentation state.
//
// A Page is immutable after startup: identity, sub-page list, and column
// schema. Only its ViewModel mutates, and only from the update loop. The
// view identity keys data fetches so late results for a view the user has
// left can be recognized and dropped.
package page

import (
	"github.com/proxytop/proxytop/internal/classify"
	"github.com/proxytop/proxytop/internal/layout"
)

// ViewID identifies one page/sub-page pair. It keys provider queries,
// view models, and in-flight fetch results.
type ViewID string

const (
	ViewConnsUserHost ViewID = "frontend/conns-user-host"
	ViewConnsByUser   ViewID = "frontend/conns-by-user"
	ViewConnsByHost   ViewID = "frontend/conns-by-host"
	ViewSlowQueries   ViewID = "frontend/slow-queries"
	ViewQueryPatterns ViewID = "frontend/query-patterns"

	ViewBackendPool ViewID = "backend/pool"

	ViewRuntimeUsers    ViewID = "runtime/users"
	ViewRuntimeRules    ViewID = "runtime/rules"
	ViewRuntimeBackends ViewID = "runtime/backends"
	ViewMySQLVariables  ViewID = "runtime/mysql-vars"
	ViewAdminVariables  ViewID = "runtime/admin-vars"
	ViewRuntimeStats    ViewID = "runtime/stats"
	ViewHostgroups      ViewID = "runtime/hostgroups"

	ViewPerformance ViewID = "performance"
	ViewLogs        ViewID = "logs"
)

// Row is one table row: display cells in schema order, the activity level
// that colors the row, and the precomputed filter haystack. SearchText is
// built once per refresh, never per keystroke.
type Row struct {
	Cells      []string
	Level      classify.Level
	Leveled    bool   // false for views without an activity column
	Addr       string // client/server address eligible for reverse DNS
	SearchText string
}

// View is one page or sub-page table: identity, tab title, column schema,
// and the mutable view model. A nil Columns slice marks a non-tabular view
// (the performance graphs).
type View struct {
	ID      ViewID
	Title   string
	Columns []layout.Column
	Model   ViewModel
}

// Page groups one or more views under a numbered navigation slot.
type Page struct {
	ID    string
	Title string
	Views []*View
}

// badge returns the standard leading activity column.
func badge() layout.Column {
	return layout.Column{ID: "status", Title: "Status", MinWidth: 13, MaxWidth: 14, Weight: 2}
}

func num(id, title string, min, max int) layout.Column {
	return layout.Column{ID: id, Title: title, MinWidth: min, MaxWidth: max, Weight: 1, Align: layout.AlignRight}
}

// Catalog builds the full page set in navigation order. Called once at
// startup; the returned pages are never reshaped afterwards.
func Catalog() []*Page {
	return []*Page{
		{
			ID:    "frontend",
			Title: "Frontend",
			Views: []*View{
				{ID: ViewConnsUserHost, Title: "Conns: User&Host", Columns: []layout.Column{
					badge(),
					{ID: "user", Title: "User", MinWidth: 8, MaxWidth: 24, Weight: 3},
					{ID: "host", Title: "Client Host", MinWidth: 11, Weight: 4},
					num("total", "Total", 5, 8),
					num("active", "Active", 6, 8),
					num("idle", "Idle", 4, 8),
				}},
				{ID: ViewConnsByUser, Title: "Conns: By User", Columns: []layout.Column{
					badge(),
					{ID: "user", Title: "Username", MinWidth: 8, Weight: 4},
					num("total", "Total", 5, 10),
					num("active", "Active", 6, 10),
					num("idle", "Idle", 4, 10),
				}},
				{ID: ViewConnsByHost, Title: "Conns: By Host", Columns: []layout.Column{
					badge(),
					{ID: "host", Title: "Client Host", MinWidth: 11, Weight: 4},
					num("total", "Total", 5, 8),
					num("active", "Act", 3, 6),
					num("idle", "Idle", 4, 6),
					num("users", "Users", 5, 7),
				}},
				{ID: ViewSlowQueries, Title: "Slow Queries", Columns: []layout.Column{
					num("time", "Time", 7, 10),
					num("hg", "HG", 2, 4),
					{ID: "server", Title: "Server", MinWidth: 12, MaxWidth: 26, Weight: 2},
					{ID: "userdb", Title: "User@DB", MinWidth: 10, MaxWidth: 28, Weight: 2},
					{ID: "command", Title: "Command", MinWidth: 7, MaxWidth: 10, Weight: 1},
					{ID: "query", Title: "Query", MinWidth: 20, Weight: 5},
				}},
				{ID: ViewQueryPatterns, Title: "Query Patterns", Columns: []layout.Column{
					num("rank", "Rank", 4, 5),
					num("execs", "Executions", 10, 12),
					num("avg", "Avg ms", 7, 10),
					num("total", "Total ms", 8, 12),
					{ID: "user", Title: "User", MinWidth: 4, MaxWidth: 16, Weight: 1},
					{ID: "schema", Title: "Database", MinWidth: 8, MaxWidth: 16, Weight: 1},
					{ID: "pattern", Title: "Pattern", MinWidth: 20, Weight: 5},
				}},
			},
		},
		{
			ID:    "backend",
			Title: "Backend",
			Views: []*View{
				{ID: ViewBackendPool, Title: "Connection Pool", Columns: []layout.Column{
					badge(),
					num("hg", "HG", 2, 4),
					{ID: "server", Title: "Server", MinWidth: 12, Weight: 4},
					num("port", "Port", 4, 5),
					{ID: "state", Title: "State", MinWidth: 7, MaxWidth: 14, Weight: 1},
					num("weight", "Weight", 6, 7),
					{ID: "conns", Title: "Conn U/F", MinWidth: 8, MaxWidth: 13, Weight: 1, Align: layout.AlignRight},
					num("clients", "Clients", 7, 8),
					num("load", "Load%", 5, 6),
					num("queries", "Queries", 7, 12),
					num("errors", "Err", 3, 5),
					num("latency", "Latency", 7, 9),
					num("sent", "Sent", 6, 10),
					num("recv", "Recv", 6, 10),
				}},
			},
		},
		{
			ID:    "runtime",
			Title: "Runtime",
			Views: []*View{
				{ID: ViewRuntimeUsers, Title: "Users", Columns: []layout.Column{
					{ID: "user", Title: "Username", MinWidth: 8, MaxWidth: 24, Weight: 3},
					{ID: "password", Title: "Password", MinWidth: 10, MaxWidth: 22, Weight: 1},
					{ID: "active", Title: "Active", MinWidth: 6, MaxWidth: 7, Weight: 2},
					{ID: "ssl", Title: "UseSSL", MinWidth: 6, MaxWidth: 7, Weight: 1},
					num("hg", "HostGroup", 9, 10),
					{ID: "schema", Title: "DefaultSchema", MinWidth: 13, Weight: 2},
					{ID: "txn", Title: "TxnPersist", MinWidth: 10, MaxWidth: 11, Weight: 1},
					num("maxconn", "MaxConn", 7, 9),
					{ID: "comment", Title: "Comment", MinWidth: 7, MaxWidth: 30, Weight: 1},
				}},
				{ID: ViewRuntimeRules, Title: "Rules", Columns: []layout.Column{
					badge(),
					num("rule", "Rule", 4, 5),
					{ID: "active", Title: "Act", MinWidth: 3, MaxWidth: 4, Weight: 1},
					num("hg", "HG", 2, 4),
					{ID: "apply", Title: "Apl", MinWidth: 3, MaxWidth: 4, Weight: 1},
					num("hits", "Hits", 7, 10),
					{ID: "digest", Title: "Digest", MinWidth: 10, MaxWidth: 20, Weight: 1},
					{ID: "match", Title: "Match", MinWidth: 16, Weight: 4},
					{ID: "user", Title: "Username", MinWidth: 8, MaxWidth: 16, Weight: 1},
					{ID: "comment", Title: "Comment", MinWidth: 7, MaxWidth: 30, Weight: 2},
				}},
				{ID: ViewRuntimeBackends, Title: "Backends", Columns: []layout.Column{
					num("hg", "HG", 2, 4),
					{ID: "server", Title: "Server", MinWidth: 12, Weight: 4},
					num("port", "Port", 4, 5),
					{ID: "state", Title: "Status", MinWidth: 7, MaxWidth: 14, Weight: 2},
					num("weight", "Weight", 6, 7),
					num("compress", "Compress", 8, 9),
					num("maxconn", "MaxConn", 7, 8),
					num("lag", "MaxRepLag", 9, 10),
					{ID: "ssl", Title: "UseSSL", MinWidth: 6, MaxWidth: 7, Weight: 1},
					num("maxlat", "MaxLatMs", 8, 9),
				}},
				{ID: ViewMySQLVariables, Title: "MySQL Vars", Columns: []layout.Column{
					{ID: "name", Title: "Variable Name", MinWidth: 20, MaxWidth: 50, Weight: 2},
					{ID: "value", Title: "Value", MinWidth: 10, Weight: 3},
				}},
				{ID: ViewAdminVariables, Title: "Admin Vars", Columns: []layout.Column{
					{ID: "name", Title: "Variable Name", MinWidth: 20, MaxWidth: 50, Weight: 2},
					{ID: "value", Title: "Value", MinWidth: 10, Weight: 3},
				}},
				{ID: ViewRuntimeStats, Title: "Runtime Stats", Columns: []layout.Column{
					{ID: "name", Title: "Statistic Name", MinWidth: 20, MaxWidth: 50, Weight: 2},
					{ID: "value", Title: "Value", MinWidth: 10, Weight: 3},
				}},
				{ID: ViewHostgroups, Title: "Hostgroups", Columns: []layout.Column{
					num("writer", "Writer HG", 9, 11),
					num("reader", "Reader HG", 9, 11),
					{ID: "check", Title: "Check Type", MinWidth: 10, MaxWidth: 20, Weight: 1},
					{ID: "comment", Title: "Comment", MinWidth: 7, Weight: 3},
				}},
			},
		},
		{
			ID:    "performance",
			Title: "Performance",
			Views: []*View{
				{ID: ViewPerformance, Title: "Performance"},
			},
		},
		{
			ID:    "logs",
			Title: "Logs",
			Views: []*View{
				{ID: ViewLogs, Title: "Logs", Columns: []layout.Column{
					{ID: "ts", Title: "Timestamp", MinWidth: 19, MaxWidth: 20, Weight: 1},
					{ID: "level", Title: "Level", MinWidth: 5, MaxWidth: 8, Weight: 1},
					{ID: "msg", Title: "Message", MinWidth: 20, Weight: 5},
				}},
			},
		},
	}
}
