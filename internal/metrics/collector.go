// Package metrics provides Prometheus metrics for proxytop.
//
// The dashboard is the primary surface; metrics are an optional side
// channel enabled with --metrics so a Prometheus server can scrape the
// same ProxySQL stats the dashboard renders.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// =============================================================================
// Panel 1: Dashboard Overview
// =============================================================================

var (
	proxytopInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "proxytop_info",
			Help: "Information about the running dashboard (value always 1)",
		},
		[]string{"version", "admin_addr"},
	)

	proxytopAdminUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxytop_admin_up",
			Help: "Whether the ProxySQL admin interface is reachable (1 = up)",
		},
	)

	proxytopUptimeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxytop_uptime_seconds",
			Help: "Seconds since the dashboard started",
		},
	)
)

// =============================================================================
// Panel 2: ProxySQL Traffic
// =============================================================================

var (
	proxytopQueriesPerSec = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxytop_queries_per_second",
			Help: "Current query rate derived from the Questions counter",
		},
	)

	proxytopGlobalCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxytop_proxysql_counter_total",
			Help: "Monotonic ProxySQL global counters re-exported by name",
		},
		[]string{"name"},
	)

	proxytopFrontendConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "proxytop_frontend_connections",
			Help: "Frontend client connections by state",
		},
		[]string{"state"},
	)
)

// =============================================================================
// Panel 3: Backend Pool
// =============================================================================

var (
	proxytopBackends = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "proxytop_backends",
			Help: "Backend servers by status",
		},
		[]string{"status"},
	)

	proxytopBackendConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "proxytop_backend_connections",
			Help: "Backend pool connections by state",
		},
		[]string{"state"},
	)
)

// =============================================================================
// Panel 4: Dashboard Health
// =============================================================================

var (
	proxytopFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxytop_fetches_total",
			Help: "Total admin interface fetches by view",
		},
		[]string{"view"},
	)

	proxytopFetchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxytop_fetch_failures_total",
			Help: "Total failed admin interface fetches by view",
		},
		[]string{"view"},
	)

	proxytopFetchDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proxytop_fetch_duration_seconds",
			Help:    "Admin interface fetch duration by view",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"view"},
	)

	proxytopDNSLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxytop_dns_lookups_total",
			Help: "Total reverse DNS lookups by result",
		},
		[]string{"result"},
	)

	proxytopAdminActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxytop_admin_actions_total",
			Help: "Total admin actions executed by name",
		},
		[]string{"action"},
	)
)

// =============================================================================
// Collector
// =============================================================================

// Collector manages all Prometheus metrics for the dashboard.
type Collector struct {
	startTime time.Time

	// Internal tracking for delta calculations. ProxySQL exposes
	// monotonic counters that reset when the server restarts or when
	// stats are cleared; deltas rebase on any backwards movement.
	mu   sync.Mutex
	prev map[string]float64
}

// CollectorConfig holds configuration for the collector.
type CollectorConfig struct {
	Version   string
	AdminAddr string
}

// NewCollector creates a new metrics collector.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector with a custom registry.
// Useful for testing.
func NewCollectorWithRegistry(cfg CollectorConfig, registry prometheus.Registerer) *Collector {
	c := &Collector{
		startTime: time.Now(),
		prev:      make(map[string]float64),
	}

	registry.MustRegister(
		// Panel 1: Dashboard Overview
		proxytopInfo,
		proxytopAdminUp,
		proxytopUptimeSeconds,

		// Panel 2: ProxySQL Traffic
		proxytopQueriesPerSec,
		proxytopGlobalCounter,
		proxytopFrontendConnections,

		// Panel 3: Backend Pool
		proxytopBackends,
		proxytopBackendConnections,

		// Panel 4: Dashboard Health
		proxytopFetchesTotal,
		proxytopFetchFailuresTotal,
		proxytopFetchDurationSeconds,
		proxytopDNSLookupsTotal,
		proxytopAdminActionsTotal,
	)

	proxytopInfo.WithLabelValues(cfg.Version, cfg.AdminAddr).Set(1)

	return c
}

// SetAdminUp records whether the admin interface answered the last poll.
func (c *Collector) SetAdminUp(up bool) {
	v := float64(0)
	if up {
		v = 1
	}
	proxytopAdminUp.Set(v)
	proxytopUptimeSeconds.Set(time.Since(c.startTime).Seconds())
}

// SetQPS records the current query rate.
func (c *Collector) SetQPS(qps float64) {
	proxytopQueriesPerSec.Set(qps)
}

// RecordCounters re-exports ProxySQL global counters. Values are
// cumulative on the ProxySQL side, so each name is converted to a
// delta against the previous observation before being added.
func (c *Collector) RecordCounters(counters map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, value := range counters {
		prev, seen := c.prev[name]
		c.prev[name] = value
		if !seen {
			continue
		}
		delta := value - prev
		if delta > 0 {
			proxytopGlobalCounter.WithLabelValues(name).Add(delta)
		}
	}
}

// SetFrontendConnections records frontend client connection gauges.
func (c *Collector) SetFrontendConnections(connected, active, idle float64) {
	proxytopFrontendConnections.WithLabelValues("connected").Set(connected)
	proxytopFrontendConnections.WithLabelValues("active").Set(active)
	proxytopFrontendConnections.WithLabelValues("idle").Set(idle)
}

// SetBackendCounts records backend server counts by status.
func (c *Collector) SetBackendCounts(online, shunned, offline int) {
	proxytopBackends.WithLabelValues("online").Set(float64(online))
	proxytopBackends.WithLabelValues("shunned").Set(float64(shunned))
	proxytopBackends.WithLabelValues("offline").Set(float64(offline))
}

// SetBackendConnections records backend pool connection gauges.
func (c *Collector) SetBackendConnections(used, free float64) {
	proxytopBackendConnections.WithLabelValues("used").Set(used)
	proxytopBackendConnections.WithLabelValues("free").Set(free)
}

// RecordFetch records one admin interface fetch.
func (c *Collector) RecordFetch(view string, d time.Duration, err error) {
	proxytopFetchesTotal.WithLabelValues(view).Inc()
	proxytopFetchDurationSeconds.WithLabelValues(view).Observe(d.Seconds())
	if err != nil {
		proxytopFetchFailuresTotal.WithLabelValues(view).Inc()
	}
}

// RecordLookup records one reverse DNS lookup.
func (c *Collector) RecordLookup(resolved bool) {
	result := "error"
	if resolved {
		result = "ok"
	}
	proxytopDNSLookupsTotal.WithLabelValues(result).Inc()
}

// RecordAction records one executed admin action.
func (c *Collector) RecordAction(action string) {
	proxytopAdminActionsTotal.WithLabelValues(action).Inc()
}

// Uptime returns how long the collector has been running.
func (c *Collector) Uptime() time.Duration {
	return time.Since(c.startTime)
}
