package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/proxytop/proxytop/internal/classify"
	"github.com/proxytop/proxytop/internal/layout"
	"github.com/proxytop/proxytop/internal/page"
	"github.com/proxytop/proxytop/internal/proxysql"
)

// chromeRows is the height the header, tabs, column header, and footer
// consume around the table viewport.
const chromeRows = 8

// noticeTTL is how long a transient footer message stays visible.
const noticeTTL = 5 * time.Second

// =============================================================================
// Main View Rendering
// =============================================================================

func (m Model) render() string {
	view := m.activeView()

	if view.Columns != nil && m.width < layout.MinViewport(view.Columns) {
		return m.renderTooSmall(layout.MinViewport(view.Columns))
	}

	sections := []string{
		m.renderHeader(),
		m.renderPageTabs(),
		m.renderViewTabs(),
	}

	if view.ID == page.ViewPerformance {
		sections = append(sections, m.renderPerformance())
	} else {
		sections = append(sections, m.renderTable(view))
	}

	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTooSmall(need int) string {
	msg := fmt.Sprintf("terminal too small: %d columns, need %d", m.width, need)
	return statusWarning.Render(msg) + "\n" + mutedStyle.Render("resize or press q to quit")
}

// =============================================================================
// Header
// =============================================================================

func (m Model) renderHeader() string {
	server := m.cfg.AdminAddr
	if m.serverVersion != "" {
		server = fmt.Sprintf("ProxySQL %s @ %s", m.serverVersion, m.cfg.AdminAddr)
	}

	header := fmt.Sprintf(
		" proxytop %s │ %s │ %s │ QPS %s %s │ Conns %s │ %s ",
		m.cfg.Version,
		HealthBadge(m.health()),
		server,
		proxysql.FormatCount(int64(m.qps)),
		m.qpsArrow(),
		proxysql.FormatCount(int64(m.connTrend.Latest())),
		time.Now().Format("15:04:05"),
	)

	return headerStyle.Width(m.width).Render(header)
}

// qpsArrow compares the current rate to the session average.
func (m Model) qpsArrow() string {
	if m.qpsCount == 0 {
		return "→"
	}
	avg := m.qpsSum / float64(m.qpsCount)
	switch {
	case m.qps > avg*1.1:
		return "↑"
	case m.qps < avg*0.9:
		return "↓"
	default:
		return "→"
	}
}

// =============================================================================
// Tabs
// =============================================================================

func (m Model) renderPageTabs() string {
	tabs := make([]string, 0, len(m.pages))
	for i, p := range m.pages {
		label := fmt.Sprintf("%d:%s", i+1, p.Title)
		if i == m.pageIdx {
			tabs = append(tabs, tabActiveStyle.Render("["+label+"]"))
		} else {
			tabs = append(tabs, tabStyle.Render(" "+label+" "))
		}
	}
	return strings.Join(tabs, "")
}

func (m Model) renderViewTabs() string {
	p := m.activePage()
	if len(p.Views) == 1 {
		return titleStyle.Render(" " + p.Views[0].Title)
	}
	tabs := make([]string, 0, len(p.Views))
	for i, v := range p.Views {
		if i == m.viewIdx[m.pageIdx] {
			tabs = append(tabs, tabActiveStyle.Render(v.Title))
		} else {
			tabs = append(tabs, tabStyle.Render(v.Title))
		}
	}
	return strings.Join(tabs, dimStyle.Render("·"))
}

// =============================================================================
// Table
// =============================================================================

func (m Model) renderTable(v *page.View) string {
	res := layout.Compute(m.width, v.Columns)

	var b strings.Builder
	b.WriteString(m.renderColumnHeader(v.Columns, res))
	b.WriteByte('\n')

	viewport := m.viewportRows()
	rows := v.Model.Window(viewport)
	if len(rows) == 0 {
		if v.Model.TotalLen() == 0 {
			b.WriteString(mutedStyle.Render("  waiting for data..."))
		} else {
			b.WriteString(mutedStyle.Render("  no matching rows"))
		}
		return b.String()
	}

	stale := v.Model.Stale()
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.renderRow(v.ID, row, v.Columns, res, stale))
	}
	return b.String()
}

func (m Model) renderColumnHeader(cols []layout.Column, res layout.Result) string {
	cells := make([]string, 0, len(cols))
	for _, c := range cols {
		cells = append(cells, fitCell(c.Title, res.Widths[c.ID], c.Align))
	}
	return tableHeaderStyle.Render(strings.Join(cells, " "))
}

func (m Model) renderRow(id page.ViewID, row page.Row, cols []layout.Column, res layout.Result, stale bool) string {
	cells := make([]string, 0, len(cols))
	for i, c := range cols {
		text := ""
		if i < len(row.Cells) {
			text = row.Cells[i]
		}
		cells = append(cells, fitCell(text, res.Widths[c.ID], c.Align))
	}
	line := strings.Join(cells, " ")

	switch {
	case stale:
		return staleStyle.Render(line)
	case row.Leveled:
		return levelStyle(row.Level).Render(line)
	case id == page.ViewLogs && len(row.Cells) > 1:
		return logLevelStyle(row.Cells[1]).Render(line)
	default:
		return baseStyle.Render(line)
	}
}

// fitCell truncates or pads a cell to its computed width, display-width
// aware so wide runes do not break column alignment.
func fitCell(s string, width int, align layout.Align) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	if align == layout.AlignRight {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}

// =============================================================================
// Footer
// =============================================================================

func (m Model) renderFooter() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatusLine(),
		m.renderLegend(),
		m.renderHelp(),
	)
}

// renderStatusLine is the filter prompt, confirm dialog, or row stats.
func (m Model) renderStatusLine() string {
	switch m.mode {
	case modeFiltering:
		return filterPromptStyle.Render("/" + m.filterInput + "█")
	case modeConfirming:
		return confirmStyle.Render(proxysql.ActionPrompt(m.pending) + " │ confirm? [y/N]")
	}

	if m.notice != "" && time.Since(m.noticeAt) < noticeTTL {
		return statusInfo.Render(m.notice)
	}

	vm := &m.activeView().Model
	parts := []string{
		fmt.Sprintf("%d rows", vm.TotalLen()),
	}
	if q := vm.Query(); q != "" {
		parts = append(parts, fmt.Sprintf("filter %q → %d matched", q, vm.VisibleLen()))
	}
	if !m.lastUpdate.IsZero() {
		parts = append(parts, "refreshed "+m.lastUpdate.Format("15:04:05"))
	}
	if m.lastErr != "" {
		parts = append(parts, statusError.Render("stale: "+m.lastErr))
	}
	return mutedStyle.Render(strings.Join(parts, " │ "))
}

// renderLegend shows the activity scale for the current page.
func (m Model) renderLegend() string {
	switch m.activePage().ID {
	case "frontend", "backend":
		return m.connectionLegend()
	case "runtime":
		if m.activeView().ID == page.ViewRuntimeRules {
			return m.rateLegend()
		}
	case "logs":
		return m.logLegend()
	}
	return ""
}

// connectionLegend lists the tiers the connection scale can produce.
// Busy is absent: the connection bands go straight from Moderate to
// Saturated at the high boundary.
func (m Model) connectionLegend() string {
	parts := make([]string, 0, 5)
	for _, l := range []classify.Level{
		classify.LevelQuiet, classify.LevelIdle, classify.LevelLight,
		classify.LevelModerate, classify.LevelSaturated,
	} {
		parts = append(parts, levelStyle(l).Render(l.Glyph()+" "+l.Label()))
	}
	return dimStyle.Render("legend: ") + strings.Join(parts, dimStyle.Render(" · "))
}

func (m Model) rateLegend() string {
	parts := make([]string, 0, 5)
	for _, l := range []classify.Level{
		classify.LevelSilent, classify.LevelLight, classify.LevelModerate,
		classify.LevelBusy, classify.LevelHot,
	} {
		parts = append(parts, levelStyle(l).Render(l.Glyph()+" "+l.RateLabel()))
	}
	return dimStyle.Render("hits/sec: ") + strings.Join(parts, dimStyle.Render(" · "))
}

func (m Model) logLegend() string {
	order := []proxysql.LogLevel{
		proxysql.LogError, proxysql.LogWarn, proxysql.LogInfo, proxysql.LogDebug,
	}
	parts := make([]string, 0, len(order)+1)
	for _, l := range order {
		label := string(l)
		if m.logLevels[l] {
			parts = append(parts, logLevelStyle(label).Render(label))
		} else {
			parts = append(parts, dimStyle.Render(label+" (off)"))
		}
	}
	if m.logFollow {
		parts = append(parts, statusOK.Render("following"))
	} else {
		parts = append(parts, dimStyle.Render("paused"))
	}
	return dimStyle.Render("levels: ") + strings.Join(parts, dimStyle.Render(" · "))
}

func (m Model) renderHelp() string {
	var help string
	switch m.mode {
	case modeFiltering:
		help = "enter accept │ esc clear"
	case modeConfirming:
		help = "y confirm │ any other key cancels"
	default:
		help = "1-5 pages │ tab views │ j/k scroll │ / filter │ esc clear"
		if _, ok := viewActions[m.activeView().ID]; ok {
			help += " │ c clear stats"
		}
		if m.activePage().ID == "logs" {
			help = "e/w/i/d levels │ r all │ a follow │ j/k scroll │ q quit"
		} else {
			help += " │ q quit"
		}
	}
	return footerStyle.Render(help)
}
