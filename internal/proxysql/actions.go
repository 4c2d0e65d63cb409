package proxysql

import (
	"context"
	"fmt"
	"strings"
)

// ActionID names a destructive admin action. Every action requires an
// explicit confirmation step in the UI before Execute is called.
type ActionID string

const (
	ActionResetDigest  ActionID = "reset-query-digest"
	ActionResetBackend ActionID = "reset-backend-stats"
	ActionReloadRules  ActionID = "reload-query-rules"
)

// actionPlans maps each action to the statements it runs, in order. The
// stats reset tables are read with SELECT per the admin interface's
// convention; reading them clears them.
var actionPlans = map[ActionID]struct {
	Prompt     string
	Statements []string
}{
	ActionResetDigest: {
		Prompt: "Clear query digest statistics?",
		Statements: []string{
			"SELECT * FROM stats_mysql_query_digest_reset LIMIT 1",
		},
	},
	ActionResetBackend: {
		Prompt: "Clear backend query and error statistics?",
		Statements: []string{
			"SELECT * FROM stats_mysql_connection_pool_reset LIMIT 1",
			"SELECT * FROM stats_mysql_errors_reset LIMIT 1",
		},
	},
	ActionReloadRules: {
		Prompt: "Reload query rules to runtime?",
		Statements: []string{
			"LOAD MYSQL QUERY RULES TO RUNTIME",
		},
	},
}

// ActionPrompt returns the confirmation question for an action, or an
// empty string for an unknown action.
func ActionPrompt(id ActionID) string {
	return actionPlans[id].Prompt
}

// Execute runs a confirmed action. Failures are returned to be surfaced as
// a transient message; they are never retried automatically.
func (p *Provider) Execute(ctx context.Context, id ActionID) error {
	plan, ok := actionPlans[id]
	if !ok {
		return fmt.Errorf("unknown action %q", id)
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.QueryTimeout)
	defer cancel()

	for _, stmt := range plan.Statements {
		var err error
		if strings.HasPrefix(stmt, "SELECT") {
			// Reading a *_reset table clears it; the rows are discarded.
			_, err = p.queryStrings(ctx, stmt)
		} else {
			_, err = p.db.ExecContext(ctx, stmt)
		}
		if err != nil {
			return fmt.Errorf("action %s: %w", id, err)
		}
	}
	p.logger.Info("admin action executed", "action", string(id))
	return nil
}
