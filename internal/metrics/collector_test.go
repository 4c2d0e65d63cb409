package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// =============================================================================
// Test Helpers
// =============================================================================

// newTestCollector creates a collector with an isolated registry.
func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	c := NewCollectorWithRegistry(CollectorConfig{
		Version:   "test",
		AdminAddr: "localhost:6032",
	}, registry)
	return c, registry
}

// gatherValue finds a metric by name and returns the sum of its samples.
func gatherValue(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	total := float64(0)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if m.GetCounter() != nil {
				total += m.GetCounter().GetValue()
			}
			if m.GetGauge() != nil {
				total += m.GetGauge().GetValue()
			}
		}
	}
	return total
}

// =============================================================================
// Tests
// =============================================================================

func TestNewCollector(t *testing.T) {
	c, registry := newTestCollector(t)
	if c == nil {
		t.Fatal("NewCollectorWithRegistry returned nil")
	}

	if v := gatherValue(t, registry, "proxytop_info"); v != 1 {
		t.Errorf("proxytop_info = %v, want 1", v)
	}
}

func TestCollector_SetAdminUp(t *testing.T) {
	c, registry := newTestCollector(t)

	c.SetAdminUp(true)
	if v := gatherValue(t, registry, "proxytop_admin_up"); v != 1 {
		t.Errorf("admin_up = %v, want 1", v)
	}

	c.SetAdminUp(false)
	if v := gatherValue(t, registry, "proxytop_admin_up"); v != 0 {
		t.Errorf("admin_up = %v, want 0", v)
	}
}

// Metric vars are package-level and shared between collectors, so
// counter tests assert deltas against a baseline snapshot.
func TestCollector_RecordCounters(t *testing.T) {
	c, registry := newTestCollector(t)
	base := gatherValue(t, registry, "proxytop_proxysql_counter_total")

	// First observation only establishes the baseline.
	c.RecordCounters(map[string]float64{"Questions": 1000})
	if v := gatherValue(t, registry, "proxytop_proxysql_counter_total"); v != base {
		t.Errorf("after baseline, counter moved by %v, want 0", v-base)
	}

	c.RecordCounters(map[string]float64{"Questions": 1250})
	if v := gatherValue(t, registry, "proxytop_proxysql_counter_total"); v != base+250 {
		t.Errorf("after delta, counter moved by %v, want 250", v-base)
	}
}

func TestCollector_RecordCounters_ResetRebases(t *testing.T) {
	c, registry := newTestCollector(t)

	c.RecordCounters(map[string]float64{"Slow_queries": 1000})
	c.RecordCounters(map[string]float64{"Slow_queries": 1100})
	base := gatherValue(t, registry, "proxytop_proxysql_counter_total")

	// ProxySQL restart: counter goes backwards. No delta is added and
	// the next observation counts from the new baseline.
	c.RecordCounters(map[string]float64{"Slow_queries": 40})
	if v := gatherValue(t, registry, "proxytop_proxysql_counter_total"); v != base {
		t.Errorf("after reset, counter moved by %v, want 0", v-base)
	}

	c.RecordCounters(map[string]float64{"Slow_queries": 90})
	if v := gatherValue(t, registry, "proxytop_proxysql_counter_total"); v != base+50 {
		t.Errorf("after rebase, counter moved by %v, want 50", v-base)
	}
}

func TestCollector_RecordFetch(t *testing.T) {
	c, registry := newTestCollector(t)
	baseFetches := gatherValue(t, registry, "proxytop_fetches_total")
	baseFailures := gatherValue(t, registry, "proxytop_fetch_failures_total")

	c.RecordFetch("backend/pool", 5*time.Millisecond, nil)
	c.RecordFetch("backend/pool", 10*time.Millisecond, nil)
	c.RecordFetch("logs", time.Millisecond, errTest)

	if v := gatherValue(t, registry, "proxytop_fetches_total"); v != baseFetches+3 {
		t.Errorf("fetches moved by %v, want 3", v-baseFetches)
	}
	if v := gatherValue(t, registry, "proxytop_fetch_failures_total"); v != baseFailures+1 {
		t.Errorf("failures moved by %v, want 1", v-baseFailures)
	}
}

func TestCollector_Gauges(t *testing.T) {
	c, registry := newTestCollector(t)

	c.SetQPS(1234.5)
	if v := gatherValue(t, registry, "proxytop_queries_per_second"); v != 1234.5 {
		t.Errorf("qps = %v", v)
	}

	c.SetFrontendConnections(100, 30, 70)
	if v := gatherValue(t, registry, "proxytop_frontend_connections"); v != 200 {
		t.Errorf("frontend connections sum = %v, want 200", v)
	}

	c.SetBackendCounts(3, 1, 0)
	if v := gatherValue(t, registry, "proxytop_backends"); v != 4 {
		t.Errorf("backends sum = %v, want 4", v)
	}

	c.SetBackendConnections(60, 20)
	if v := gatherValue(t, registry, "proxytop_backend_connections"); v != 80 {
		t.Errorf("backend connections sum = %v, want 80", v)
	}
}

func TestCollector_RecordLookupAndAction(t *testing.T) {
	c, registry := newTestCollector(t)

	baseLookups := gatherValue(t, registry, "proxytop_dns_lookups_total")
	baseActions := gatherValue(t, registry, "proxytop_admin_actions_total")

	c.RecordLookup(true)
	c.RecordLookup(true)
	c.RecordLookup(false)
	if v := gatherValue(t, registry, "proxytop_dns_lookups_total"); v != baseLookups+3 {
		t.Errorf("lookups moved by %v, want 3", v-baseLookups)
	}

	c.RecordAction("reset-digest")
	if v := gatherValue(t, registry, "proxytop_admin_actions_total"); v != baseActions+1 {
		t.Errorf("actions moved by %v, want 1", v-baseActions)
	}
}

type testError struct{}

func (testError) Error() string { return "test error" }

var errTest = testError{}
