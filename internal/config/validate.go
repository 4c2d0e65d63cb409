package config

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Admin.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "admin.host",
			Message: "must not be empty",
		})
	}
	if cfg.Admin.Port < 1 || cfg.Admin.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "admin.port",
			Message: fmt.Sprintf("must be 1-65535 (got %d)", cfg.Admin.Port),
		})
	}
	if cfg.Admin.User == "" {
		errs = append(errs, ValidationError{
			Field:   "admin.user",
			Message: "must not be empty",
		})
	}
	if cfg.Admin.Timeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   "admin.timeout",
			Message: "must be positive",
		})
	}

	// Each threshold list must ascend, otherwise classification bands
	// overlap.
	checkAscending := func(field string, low, medium, high float64) {
		if !(low > 0 && low < medium && medium < high) {
			errs = append(errs, ValidationError{
				Field: field,
				Message: fmt.Sprintf("must ascend: low < medium < high (got %v, %v, %v)",
					low, medium, high),
			})
		}
	}
	t := cfg.Thresholds
	checkAscending("thresholds.connections", t.ConnectionsLow, t.ConnectionsMedium, t.ConnectionsHigh)
	checkAscending("thresholds.hits_per_sec", t.HitsPerSecLow, t.HitsPerSecMedium, t.HitsPerSecHigh)
	checkAscending("thresholds.qps", t.QPSLow, t.QPSMedium, t.QPSHigh)

	if cfg.SlowQuery.MinExecutionMS < 0 {
		errs = append(errs, ValidationError{
			Field:   "slow_queries.min_execution_ms",
			Message: "must not be negative",
		})
	}
	if cfg.SlowQuery.MaxRows < 1 {
		errs = append(errs, ValidationError{
			Field:   "slow_queries.max_rows",
			Message: "must be at least 1",
		})
	}

	if cfg.Logs.MaxLines < 1 {
		errs = append(errs, ValidationError{
			Field:   "logs.max_lines",
			Message: "must be at least 1",
		})
	}

	const minInterval = 100 * time.Millisecond
	if cfg.UI.RefreshInterval < minInterval {
		errs = append(errs, ValidationError{
			Field:   "ui.refresh_interval",
			Message: fmt.Sprintf("must be at least %v (got %v)", minInterval, cfg.UI.RefreshInterval),
		})
	}
	if cfg.UI.TrendSamples < 2 {
		errs = append(errs, ValidationError{
			Field:   "ui.trend_samples",
			Message: "must be at least 2",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
