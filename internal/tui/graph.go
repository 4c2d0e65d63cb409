package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/proxytop/proxytop/internal/classify"
	"github.com/proxytop/proxytop/internal/proxysql"
	"github.com/proxytop/proxytop/internal/timeseries"
)

// graphHeight is the bar rows per trend graph on the performance page.
const graphHeight = 6

// =============================================================================
// Performance Page
// =============================================================================

func (m Model) renderPerformance() string {
	sections := []string{
		m.renderKeyMetrics(),
		renderTrendGraph("QPS", m.qpsTrend, m.width-4, graphHeight),
		renderTrendGraph("Client Connections", m.connTrend, m.width-4, graphHeight),
		m.renderLatency(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderKeyMetrics() string {
	avg := float64(0)
	if m.qpsCount > 0 {
		avg = m.qpsSum / float64(m.qpsCount)
	}

	// The current rate takes the configured QPS threshold color.
	qpsLevel := classify.Rate(m.qps, m.cfg.QPSScale)
	qps := fmt.Sprintf("QPS %s  avg %s  peak %s",
		levelStyle(qpsLevel).Render(proxysql.FormatCount(int64(m.qps))),
		proxysql.FormatCount(int64(avg)),
		proxysql.FormatCount(int64(m.qpsPeak)))

	conns := fmt.Sprintf("Conns %s", boldStyle.Render(
		proxysql.FormatCount(int64(m.connTrend.Latest()))))

	backends := ""
	if m.backendTotal > 0 {
		backends = fmt.Sprintf("Backends %d/%d online", m.backendOnline, m.backendTotal)
	}

	var errs string
	if m.counters != nil {
		aborted := m.counters["Client_Connections_aborted"] +
			m.counters["Server_Connections_aborted"]
		errs = fmt.Sprintf("Aborted conns %s", proxysql.FormatCount(int64(aborted)))
	}

	uptime := ""
	if m.counters != nil {
		uptime = fmt.Sprintf("ProxySQL up %s",
			proxysql.FormatTimeMS(m.counters["ProxySQL_Uptime"]*1000))
	}

	parts := []string{qps, conns}
	if backends != "" {
		parts = append(parts, backends)
	}
	if errs != "" {
		parts = append(parts, errs)
	}
	if uptime != "" {
		parts = append(parts, uptime)
	}
	return mutedStyle.Render(strings.Join(parts, "  │  "))
}

func (m Model) renderLatency() string {
	if m.latency.Count() == 0 {
		return dimStyle.Render("admin fetch latency: collecting...")
	}
	return mutedStyle.Render(fmt.Sprintf(
		"admin fetch latency: p50 %.0fms  p95 %.0fms  p99 %.0fms",
		m.latency.Quantile(0.50),
		m.latency.Quantile(0.95),
		m.latency.Quantile(0.99),
	))
}

// =============================================================================
// Trend Graph
// =============================================================================

// renderTrendGraph draws a bar chart of the most recent samples, one
// column per sample, scaled to the window maximum.
func renderTrendGraph(title string, buf *timeseries.TrendBuffer, width, height int) string {
	if width < 10 {
		width = 10
	}
	if height < 2 {
		height = 2
	}

	values := buf.Values()
	if len(values) > width {
		values = values[len(values)-width:]
	}

	max := float64(0)
	for _, v := range values {
		if v > max {
			max = v
		}
	}

	header := titleStyle.Render(title) + dimStyle.Render(
		fmt.Sprintf("  (max %s, %d samples)", proxysql.FormatCount(int64(max)), len(values)))

	if len(values) == 0 {
		return header + "\n" + dimStyle.Render("  no samples yet")
	}

	// Bar height per sample, minimum one cell for any nonzero value.
	bars := make([]int, len(values))
	for i, v := range values {
		if max > 0 {
			bars[i] = int(v / max * float64(height))
		}
		if v > 0 && bars[i] == 0 {
			bars[i] = 1
		}
		if bars[i] > height {
			bars[i] = height
		}
	}

	var b strings.Builder
	b.WriteString(header)
	for row := height; row >= 1; row-- {
		b.WriteByte('\n')
		var line strings.Builder
		for _, h := range bars {
			if h >= row {
				line.WriteRune('█')
			} else {
				line.WriteByte(' ')
			}
		}
		b.WriteString(statusInfo.Render(line.String()))
	}
	return b.String()
}
