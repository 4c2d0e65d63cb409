// Package main provides the proxytop CLI entry point.
//
// proxytop is a live terminal dashboard for ProxySQL. It polls the SQL
// admin interface (port 6032) and renders connections, backend health,
// query rules, slow queries, and logs as a navigable multi-page view.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/proxytop/proxytop/internal/classify"
	"github.com/proxytop/proxytop/internal/config"
	"github.com/proxytop/proxytop/internal/logging"
	"github.com/proxytop/proxytop/internal/metrics"
	"github.com/proxytop/proxytop/internal/proxysql"
	"github.com/proxytop/proxytop/internal/resolve"
	"github.com/proxytop/proxytop/internal/tui"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/proxytop
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, showVersion, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return 1
	}
	if showVersion {
		fmt.Printf("proxytop %s\n", version)
		return 0
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error:\n%v\n", err)
		return 1
	}

	// The TUI owns the terminal, so diagnostics go to a file or nowhere.
	sink, err := logging.Open(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		return 1
	}
	defer sink.Close()
	logger := logging.NewLogger(sink, cfg.LogFormat, "info", cfg.Verbose)
	logging.SetDefault(logger)

	logger.Info("starting",
		"version", version,
		"admin_addr", cfg.Admin.Addr(),
		"interval", cfg.UI.RefreshInterval,
		"metrics_addr", cfg.MetricsAddr,
	)

	provider, err := proxysql.New(proxysql.Options{
		Addr:             cfg.Admin.Addr(),
		User:             cfg.Admin.User,
		Password:         cfg.Admin.Password,
		ExcludedUsers:    cfg.Filters.ExcludedUsers,
		SlowQueryMinMS:   cfg.SlowQuery.MinExecutionMS,
		SlowQueryMaxRows: cfg.SlowQuery.MaxRows,
		ConnScale: classify.ConnectionScale(
			cfg.Thresholds.ConnectionsLow,
			cfg.Thresholds.ConnectionsMedium,
			cfg.Thresholds.ConnectionsHigh,
		),
		RateScale: classify.RateScale(
			cfg.Thresholds.HitsPerSecLow,
			cfg.Thresholds.HitsPerSecMedium,
			cfg.Thresholds.HitsPerSecHigh,
		),
		QueryTimeout: cfg.Admin.Timeout,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to %s: %v\n", cfg.Admin.Addr(), err)
		return 1
	}
	defer provider.Close()

	// An unreachable admin interface at startup is fatal; after that,
	// failures degrade the display and retry on the next tick.
	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.Admin.Timeout)
	err = provider.Ping(pingCtx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ProxySQL admin interface unreachable at %s: %v\n",
			cfg.Admin.Addr(), err)
		return 1
	}

	var collector *metrics.Collector
	if cfg.MetricsAddr != "" {
		collector = metrics.NewCollector(metrics.CollectorConfig{
			Version:   version,
			AdminAddr: cfg.Admin.Addr(),
		})
		srv := metrics.NewServer(cfg.MetricsAddr, logger)
		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting metrics server: %v\n", err)
			return 1
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	resolver := resolve.New(logger)
	defer resolver.Close()

	model := tui.New(tui.Config{
		Source:          provider,
		Resolver:        resolver,
		Collector:       collector,
		Logger:          logger,
		AdminAddr:       cfg.Admin.Addr(),
		Version:         version,
		RefreshInterval: cfg.UI.RefreshInterval,
		TrendSamples:    cfg.UI.TrendSamples,
		LogPath:         cfg.Logs.Path,
		LogMaxLines:     cfg.Logs.MaxLines,
		QPSScale: classify.RateScale(
			cfg.Thresholds.QPSLow,
			cfg.Thresholds.QPSMedium,
			cfg.Thresholds.QPSHigh,
		),
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error("tui_failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger.Info("stopped")
	return 0
}
