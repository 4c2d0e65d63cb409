// Package config provides configuration management for proxytop.
//
// Defaults cover a stock ProxySQL install (admin interface on
// localhost:6032). A YAML file can override any section, and flags
// override the file. Configuration is read once at startup and treated as
// immutable for the life of the process.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the dashboard.
type Config struct {
	Admin      Admin      `yaml:"admin"`
	Thresholds Thresholds `yaml:"thresholds"`
	Filters    Filters    `yaml:"filters"`
	SlowQuery  SlowQuery  `yaml:"slow_queries"`
	Logs       Logs       `yaml:"logs"`
	UI         UI         `yaml:"ui"`

	// Observability
	MetricsAddr string `yaml:"metrics_addr"` // empty = disabled
	Verbose     bool   `yaml:"verbose"`
	LogFormat   string `yaml:"log_format"` // json, text
	LogPath     string `yaml:"log_path"`   // diagnostic log destination; empty = discard while the TUI runs
}

// Admin describes the ProxySQL admin interface connection.
type Admin struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Addr returns host:port for the admin interface.
func (a Admin) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// Thresholds are the classification boundaries, each list read as
// low/medium/high ascending.
type Thresholds struct {
	ConnectionsLow    float64 `yaml:"connections_low"`
	ConnectionsMedium float64 `yaml:"connections_medium"`
	ConnectionsHigh   float64 `yaml:"connections_high"`

	HitsPerSecLow    float64 `yaml:"hits_per_sec_low"`
	HitsPerSecMedium float64 `yaml:"hits_per_sec_medium"`
	HitsPerSecHigh   float64 `yaml:"hits_per_sec_high"`

	QPSLow    float64 `yaml:"qps_low"`
	QPSMedium float64 `yaml:"qps_medium"`
	QPSHigh   float64 `yaml:"qps_high"`
}

// Filters excludes system accounts from the connection views.
type Filters struct {
	ExcludedUsers []string `yaml:"excluded_users"`
}

// SlowQuery controls the slow-query view.
type SlowQuery struct {
	MinExecutionMS int `yaml:"min_execution_ms"`
	MaxRows        int `yaml:"max_rows"`
}

// Logs controls the daemon-log view.
type Logs struct {
	Path     string `yaml:"path"`
	MaxLines int    `yaml:"max_lines"`
}

// UI holds refresh and history settings.
type UI struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	TrendSamples    int           `yaml:"trend_samples"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Admin: Admin{
			Host:     "localhost",
			Port:     6032,
			User:     "admin",
			Password: "admin",
			Timeout:  5 * time.Second,
		},
		Thresholds: Thresholds{
			ConnectionsLow:    10,
			ConnectionsMedium: 50,
			ConnectionsHigh:   100,

			HitsPerSecLow:    1_000,
			HitsPerSecMedium: 10_000,
			HitsPerSecHigh:   100_000,

			QPSLow:    1_000,
			QPSMedium: 5_000,
			QPSHigh:   10_000,
		},
		Filters: Filters{
			ExcludedUsers: []string{"proxysql-admin", "proxysql-stats", "proxysql-stat"},
		},
		SlowQuery: SlowQuery{
			MinExecutionMS: 10,
			MaxRows:        50,
		},
		Logs: Logs{
			Path:     "/var/lib/proxysql/proxysql.log",
			MaxLines: 100,
		},
		UI: UI{
			RefreshInterval: 1 * time.Second,
			TrendSamples:    120,
		},

		MetricsAddr: "",
		Verbose:     false,
		LogFormat:   "text",
	}
}

// LoadFile merges a YAML file over cfg. Unknown keys are rejected so a
// typo in the file fails loudly instead of silently using a default.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
