package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// userList is a custom flag type for repeatable -exclude-user flags.
type userList []string

func (u *userList) String() string {
	return strings.Join(*u, ", ")
}

func (u *userList) Set(value string) error {
	*u = append(*u, value)
	return nil
}

// ParseFlags parses command-line flags, loading -config first so flags
// override the file. Returns the config and whether -version was asked.
func ParseFlags() (*Config, bool, error) {
	cfg := DefaultConfig()
	var (
		excluded    userList
		configFile  string
		showVersion bool
	)

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `proxytop - live terminal dashboard for a ProxySQL instance

Usage:
  proxytop [flags]

Connection Flags:
`)
		printFlagCategory([]string{"host", "port", "user", "password", "timeout"})

		fmt.Fprintf(os.Stderr, "\nDisplay:\n")
		printFlagCategory([]string{"interval", "slow-query-ms", "exclude-user"})

		fmt.Fprintf(os.Stderr, "\nLogs Page:\n")
		printFlagCategory([]string{"proxysql-log", "log-lines"})

		fmt.Fprintf(os.Stderr, "\nObservability:\n")
		printFlagCategory([]string{"metrics", "v", "log-format", "log-path"})

		fmt.Fprintf(os.Stderr, "\nOther:\n")
		printFlagCategory([]string{"config", "version"})

		fmt.Fprintf(os.Stderr, `
Examples:
  # Local ProxySQL with default admin credentials
  proxytop

  # Remote admin interface
  proxytop -host 10.0.0.5 -port 6032 -user admin -password secret

  # Hide health-check accounts and slow the refresh down
  proxytop -exclude-user monitor -interval 2s

`)
	}

	// Load the file before binding flags so flag values win.
	flag.StringVar(&configFile, "config", "", "Path to YAML config file")
	for i, arg := range os.Args[1:] {
		if arg == "-config" || arg == "--config" {
			if i+1 < len(os.Args[1:]) {
				configFile = os.Args[i+2]
			}
		} else if v, ok := strings.CutPrefix(arg, "-config="); ok {
			configFile = v
		} else if v, ok := strings.CutPrefix(arg, "--config="); ok {
			configFile = v
		}
	}
	if configFile != "" {
		if err := LoadFile(cfg, configFile); err != nil {
			return nil, false, err
		}
	}

	// Connection
	flag.StringVar(&cfg.Admin.Host, "host", cfg.Admin.Host, "ProxySQL admin interface host")
	flag.IntVar(&cfg.Admin.Port, "port", cfg.Admin.Port, "ProxySQL admin interface port")
	flag.StringVar(&cfg.Admin.User, "user", cfg.Admin.User, "Admin username")
	flag.StringVar(&cfg.Admin.Password, "password", cfg.Admin.Password, "Admin password")
	flag.DurationVar(&cfg.Admin.Timeout, "timeout", cfg.Admin.Timeout, "Per-query timeout")

	// Display
	flag.DurationVar(&cfg.UI.RefreshInterval, "interval", cfg.UI.RefreshInterval, "Refresh interval")
	flag.IntVar(&cfg.SlowQuery.MinExecutionMS, "slow-query-ms", cfg.SlowQuery.MinExecutionMS,
		"Minimum execution time (ms) for the slow-query view")
	flag.Var(&excluded, "exclude-user", "Exclude a user from connection views (can repeat)")

	// Logs page
	flag.StringVar(&cfg.Logs.Path, "proxysql-log", cfg.Logs.Path, "Path to the ProxySQL daemon log")
	flag.IntVar(&cfg.Logs.MaxLines, "log-lines", cfg.Logs.MaxLines, "Log lines to tail")

	// Observability
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr,
		"Prometheus metrics address (empty = disabled)")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose diagnostic logging")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Diagnostic log format: "json" or "text"`)
	flag.StringVar(&cfg.LogPath, "log-path", cfg.LogPath,
		"Diagnostic log file (empty = discard while the dashboard runs)")

	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	// Parse
	flag.Parse()

	if len(excluded) > 0 {
		cfg.Filters.ExcludedUsers = excluded
	}

	return cfg, showVersion, nil
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(names []string) {
	flag.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(os.Stderr, "  -%s %s\n    \t%s", f.Name, flagType(f), f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "0s" && f.DefValue != "[]" {
					fmt.Fprintf(os.Stderr, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(os.Stderr)
				return
			}
		}
	})
}

// flagType returns a type hint for the flag value.
func flagType(f *flag.Flag) string {
	switch f.DefValue {
	case "true", "false":
		return ""
	}

	if strings.HasSuffix(f.DefValue, "s") || strings.HasSuffix(f.DefValue, "m") || strings.HasSuffix(f.DefValue, "h") {
		return "duration"
	}

	if _, err := fmt.Sscanf(f.DefValue, "%d", new(int)); err == nil {
		return "int"
	}

	return "string"
}
