package proxysql

import (
	"fmt"
	"strings"

	"github.com/proxytop/proxytop/internal/page"
)

// Admin interface queries, one per tabular view. Ordering is part of the
// contract: the dashboard preserves provider order, so the busiest rows
// sort to the top here, not in the client.
const (
	queryConnsUserHost = `
		SELECT user, cli_host,
		       COUNT(*) AS total_connections,
		       SUM(CASE WHEN command != "Sleep" THEN 1 ELSE 0 END) AS active,
		       SUM(CASE WHEN command = "Sleep" THEN 1 ELSE 0 END) AS idle
		FROM stats_mysql_processlist
		%s
		GROUP BY user, cli_host
		ORDER BY active DESC, total_connections DESC, user`

	queryConnsByUser = `
		SELECT DISTINCT u.username,
		       COALESCE(p.total_connections, 0) AS total_connections,
		       COALESCE(p.active, 0) AS active,
		       COALESCE(p.idle, 0) AS idle
		FROM runtime_mysql_users u
		LEFT JOIN (
		    SELECT user,
		           COUNT(*) AS total_connections,
		           SUM(CASE WHEN command != "Sleep" THEN 1 ELSE 0 END) AS active,
		           SUM(CASE WHEN command = "Sleep" THEN 1 ELSE 0 END) AS idle
		    FROM stats_mysql_processlist
		    %s
		    GROUP BY user
		) p ON u.username = p.user
		WHERE u.active = 1 %s
		ORDER BY active DESC, total_connections DESC, u.username`

	queryConnsByHost = `
		SELECT cli_host,
		       COUNT(*) AS total_connections,
		       SUM(CASE WHEN command != "Sleep" THEN 1 ELSE 0 END) AS active,
		       SUM(CASE WHEN command = "Sleep" THEN 1 ELSE 0 END) AS idle,
		       COUNT(DISTINCT user) AS unique_users
		FROM stats_mysql_processlist
		%s cli_host IS NOT NULL
		GROUP BY cli_host
		ORDER BY active DESC, total_connections DESC, cli_host`

	querySlowQueries = `
		SELECT hostgroup, srv_host, srv_port, user, db, command, time_ms, info
		FROM stats_mysql_processlist
		WHERE command != 'Sleep'
		  AND time_ms > %d
		  AND info IS NOT NULL AND info != ''
		ORDER BY time_ms DESC
		LIMIT %d`

	queryPatterns = `
		SELECT digest_text, schemaname, username, count_star,
		       sum_time/1000000 AS total_time_ms,
		       sum_time/count_star/1000000 AS avg_time_ms
		FROM stats_mysql_query_digest
		WHERE count_star > 5
		ORDER BY sum_time DESC
		LIMIT 30`

	queryBackendPool = `
		SELECT rs.hostgroup_id, rs.hostname, rs.port, rs.status, rs.weight,
		       COALESCE(cp.ConnUsed, 0) AS used_connections,
		       COALESCE(cp.ConnFree, 0) AS free_connections,
		       COALESCE(cp.ConnERR, 0) AS connection_errors,
		       COALESCE(cp.Queries, 0) AS total_queries,
		       COALESCE(cp.Bytes_data_sent, 0) AS bytes_sent,
		       COALESCE(cp.Bytes_data_recv, 0) AS bytes_received,
		       COALESCE(cp.Latency_us, 0) AS latency_us,
		       COALESCE(pl.client_count, 0) AS client_count
		FROM runtime_mysql_servers rs
		LEFT JOIN stats_mysql_connection_pool cp
		    ON rs.hostgroup_id = cp.hostgroup AND rs.hostname = cp.srv_host AND rs.port = cp.srv_port
		LEFT JOIN (
		    SELECT srv_host, srv_port, COUNT(*) AS client_count
		    FROM stats_mysql_processlist
		    GROUP BY srv_host, srv_port
		) pl ON rs.hostname = pl.srv_host AND rs.port = pl.srv_port
		ORDER BY rs.hostgroup_id, rs.hostname, rs.port`

	queryRuntimeUsers = `
		SELECT username, password, active, use_ssl, default_hostgroup,
		       default_schema, transaction_persistent, max_connections, comment
		FROM runtime_mysql_users
		ORDER BY username`

	queryRules = `
		SELECT r.rule_id, r.active, r.destination_hostgroup, r.apply,
		       r.match_digest, r.match_pattern, r.username, r.comment,
		       COALESCE(s.hits, 0) AS hits
		FROM runtime_mysql_query_rules r
		LEFT JOIN stats_mysql_query_rules s ON r.rule_id = s.rule_id
		ORDER BY r.rule_id`

	queryRuntimeBackends = `
		SELECT hostgroup_id, hostname, port, status, weight, compression,
		       max_connections, max_replication_lag, use_ssl, max_latency_ms
		FROM runtime_mysql_servers
		ORDER BY hostgroup_id, hostname, port`

	queryMySQLVariables = `
		SELECT variable_name, variable_value
		FROM runtime_global_variables
		WHERE variable_name LIKE 'mysql-%'
		ORDER BY variable_name`

	queryAdminVariables = `
		SELECT variable_name, variable_value
		FROM runtime_global_variables
		WHERE variable_name LIKE 'admin-%'
		ORDER BY variable_name`

	queryRuntimeStats = `
		SELECT Variable_Name, Variable_Value
		FROM stats_mysql_global
		ORDER BY Variable_Name`

	queryHostgroups = `
		SELECT writer_hostgroup, reader_hostgroup, check_type, comment
		FROM runtime_mysql_replication_hostgroups`

	queryVersion = `SELECT @@version_comment`
)

// counterNames are the stats_mysql_global counters tracked for the
// performance page and the header, fetched on every tick.
var counterNames = []string{
	"Questions", "Slow_queries",
	"Com_select", "Com_insert", "Com_update", "Com_delete",
	"Client_Connections_aborted", "Client_Connections_connected", "Client_Connections_created",
	"Server_Connections_aborted", "Server_Connections_connected", "Server_Connections_created",
	"ConnPool_get_conn_success", "ConnPool_get_conn_failure", "ConnPool_get_conn_immediate",
	"Questions_backends_bytes_recv", "Questions_backends_bytes_sent",
	"mysql_backend_buffers_bytes", "mysql_frontend_buffers_bytes",
	"ProxySQL_Uptime", "Query_Processor_time_nsec", "backend_query_time_nsec",
	"ConnPool_memory_bytes", "Query_Cache_Memory_bytes",
}

func counterQuery() string {
	quoted := make([]string, len(counterNames))
	for i, n := range counterNames {
		quoted[i] = "'" + n + "'"
	}
	return fmt.Sprintf(
		"SELECT Variable_name, Variable_value FROM stats_mysql_global WHERE Variable_name IN (%s)",
		strings.Join(quoted, ", "))
}

// userFilter renders the excluded-user clause. Lead is "WHERE" for queries
// where it opens the clause. Usernames come from local configuration, not
// from remote input; quoting guards against accidental metacharacters.
func userFilter(users []string, lead string) string {
	if len(users) == 0 {
		if lead == "WHERE" {
			return "WHERE"
		}
		return ""
	}
	quoted := make([]string, len(users))
	for i, u := range users {
		quoted[i] = "'" + strings.ReplaceAll(u, "'", "''") + "'"
	}
	in := strings.Join(quoted, ", ")
	switch lead {
	case "WHERE":
		return fmt.Sprintf("WHERE user NOT IN (%s) AND", in)
	case "AND":
		return fmt.Sprintf("AND u.username NOT IN (%s)", in)
	default:
		return fmt.Sprintf("WHERE user NOT IN (%s)", in)
	}
}

// queryFor resolves the SQL for a view. The logs and performance views are
// not query-backed and return false.
func (p *Provider) queryFor(id page.ViewID) (string, bool) {
	switch id {
	case page.ViewConnsUserHost:
		return fmt.Sprintf(queryConnsUserHost, userFilter(p.opts.ExcludedUsers, "")), true
	case page.ViewConnsByUser:
		return fmt.Sprintf(queryConnsByUser,
			userFilter(p.opts.ExcludedUsers, ""),
			userFilter(p.opts.ExcludedUsers, "AND")), true
	case page.ViewConnsByHost:
		return fmt.Sprintf(queryConnsByHost, userFilter(p.opts.ExcludedUsers, "WHERE")), true
	case page.ViewSlowQueries:
		return fmt.Sprintf(querySlowQueries, p.opts.SlowQueryMinMS, p.opts.SlowQueryMaxRows), true
	case page.ViewQueryPatterns:
		return queryPatterns, true
	case page.ViewBackendPool:
		return queryBackendPool, true
	case page.ViewRuntimeUsers:
		return queryRuntimeUsers, true
	case page.ViewRuntimeRules:
		return queryRules, true
	case page.ViewRuntimeBackends:
		return queryRuntimeBackends, true
	case page.ViewMySQLVariables:
		return queryMySQLVariables, true
	case page.ViewAdminVariables:
		return queryAdminVariables, true
	case page.ViewRuntimeStats:
		return queryRuntimeStats, true
	case page.ViewHostgroups:
		return queryHostgroups, true
	default:
		return "", false
	}
}
