package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/influxdata/tdigest"

	"github.com/proxytop/proxytop/internal/classify"
	"github.com/proxytop/proxytop/internal/metrics"
	"github.com/proxytop/proxytop/internal/page"
	"github.com/proxytop/proxytop/internal/proxysql"
	"github.com/proxytop/proxytop/internal/resolve"
	"github.com/proxytop/proxytop/internal/timeseries"
)

// =============================================================================
// Messages
// =============================================================================

// tickMsg drives the refresh loop.
type tickMsg time.Time

// dataMsg carries the result of one background fetch. The view identity
// lets the update loop drop results for a view the user has left.
type dataMsg struct {
	id      page.ViewID
	rows    []page.Row
	elapsed time.Duration
	err     error
}

// countersMsg carries the global counters fetched every tick.
type countersMsg struct {
	counters map[string]float64
	version  string
	err      error
}

// logsMsg carries a fresh log tail.
type logsMsg struct {
	entries []proxysql.LogEntry
}

// resolvedMsg carries one reverse DNS result.
type resolvedMsg resolve.Result

// actionResultMsg carries the outcome of a confirmed admin action.
type actionResultMsg struct {
	id  proxysql.ActionID
	err error
}

// =============================================================================
// Model
// =============================================================================

// mode is the navigation state machine.
type mode int

const (
	modeBrowsing mode = iota
	modeFiltering
	modeConfirming
)

// DataSource provides rows and counters from the ProxySQL admin interface.
type DataSource interface {
	Fetch(ctx context.Context, id page.ViewID) ([]page.Row, error)
	Counters(ctx context.Context) (map[string]float64, error)
	Execute(ctx context.Context, id proxysql.ActionID) error
	Version(ctx context.Context) string
}

// Config holds TUI configuration.
type Config struct {
	Source    DataSource
	Resolver  *resolve.Resolver
	Collector *metrics.Collector
	Logger    *slog.Logger

	AdminAddr       string
	Version         string
	RefreshInterval time.Duration
	TrendSamples    int
	LogPath         string
	LogMaxLines     int

	// QPSScale colors the performance page's QPS metric.
	QPSScale classify.Scale
}

// Model represents the dashboard state. One copy lives inside the Bubble
// Tea program; Update is the only writer of everything reachable from it.
type Model struct {
	cfg    Config
	keys   keyMap
	logger *slog.Logger

	// Pages
	pages   []*page.Page
	pageIdx int
	viewIdx []int // active sub-page per page

	// Navigation state machine
	mode        mode
	filterInput string
	pending     proxysql.ActionID

	// Reverse DNS cache. Failed lookups are cached as "" so the raw IP
	// keeps showing without re-queuing the address.
	dns map[string]string

	// Trends and session aggregates
	qpsRate   *timeseries.RateCounter
	slowRate  *timeseries.RateCounter
	qpsTrend  *timeseries.TrendBuffer
	connTrend *timeseries.TrendBuffer
	latency   *tdigest.TDigest
	qps       float64
	qpsPeak   float64
	qpsSum    float64
	qpsCount  int

	// Last observed server state
	counters      map[string]float64
	serverVersion string
	connected     bool
	backendAlert  bool
	backendOnline int
	backendTotal  int
	slowAlert     bool
	lastErr       string

	// Logs page
	logEntries []proxysql.LogEntry
	logLevels  map[proxysql.LogLevel]bool
	logFollow  bool

	// Transient footer notice
	notice   string
	noticeAt time.Time

	// Display
	width      int
	height     int
	startTime  time.Time
	lastUpdate time.Time
	quitting   bool
}

// New creates a new dashboard model.
func New(cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	samples := cfg.TrendSamples
	if samples < 2 {
		samples = timeseries.DefaultCapacity
	}
	if len(cfg.QPSScale.Bands) == 0 {
		cfg.QPSScale = classify.RateScale(1_000, 5_000, 10_000)
	}
	pages := page.Catalog()
	m := Model{
		cfg:       cfg,
		keys:      defaultKeyMap(),
		logger:    cfg.Logger,
		pages:     pages,
		viewIdx:   make([]int, len(pages)),
		dns:       make(map[string]string),
		qpsRate:   timeseries.NewRateCounter(),
		slowRate:  timeseries.NewRateCounter(),
		qpsTrend:  timeseries.NewTrendBuffer(samples),
		connTrend: timeseries.NewTrendBuffer(samples),
		latency:   tdigest.New(),
		logLevels: map[proxysql.LogLevel]bool{
			proxysql.LogError: true,
			proxysql.LogWarn:  true,
			proxysql.LogInfo:  true,
			proxysql.LogDebug: true,
		},
		logFollow: true,
		startTime: time.Now(),
		width:     80,
		height:    24,
	}
	m.syncViewports()
	return m
}

// syncViewports pushes the current table height into every view model so
// scroll clamping tracks the terminal size.
func (m *Model) syncViewports() {
	rows := m.viewportRows()
	for _, p := range m.pages {
		for _, v := range p.Views {
			v.Model.SetViewport(rows)
		}
	}
}

// activePage returns the current page.
func (m Model) activePage() *page.Page {
	return m.pages[m.pageIdx]
}

// activeView returns the current page's active sub-page.
func (m Model) activeView() *page.View {
	p := m.activePage()
	return p.Views[m.viewIdx[m.pageIdx]]
}

// viewportRows is how many table rows fit under the chrome.
func (m Model) viewportRows() int {
	rows := m.height - chromeRows
	if rows < 1 {
		rows = 1
	}
	return rows
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init starts the refresh loop and the DNS drain.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.fetchCmd(m.activeView().ID),
		m.countersCmd(),
		m.tickCmd(),
	}
	if m.cfg.Resolver != nil {
		cmds = append(cmds, m.resolveWaitCmd())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.syncViewports()
		return m, nil

	case tickMsg:
		return m, tea.Batch(
			m.fetchCmd(m.activeView().ID),
			m.countersCmd(),
			m.tickCmd(),
		)

	case dataMsg:
		return m.handleData(msg), nil

	case countersMsg:
		return m.handleCounters(msg), nil

	case logsMsg:
		m.logEntries = msg.entries
		m.rebuildLogRows()
		m.lastUpdate = time.Now()
		return m, nil

	case resolvedMsg:
		return m.handleResolved(msg)

	case actionResultMsg:
		if m.cfg.Collector != nil {
			m.cfg.Collector.RecordAction(string(msg.id))
		}
		if msg.err != nil {
			m.setNotice(fmt.Sprintf("action failed: %v", msg.err))
			return m, nil
		}
		m.setNotice("done")
		// Show the effect right away.
		return m, m.fetchCmd(m.activeView().ID)
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// =============================================================================
// Message Handlers
// =============================================================================

func (m Model) handleData(msg dataMsg) Model {
	if m.cfg.Collector != nil {
		m.cfg.Collector.RecordFetch(string(msg.id), msg.elapsed, msg.err)
	}
	if msg.err == nil {
		m.latency.Add(float64(msg.elapsed.Milliseconds()), 1)
	}

	// A result for a view the user has left is stale; drop it whole.
	active := m.activeView()
	if msg.id != active.ID {
		return m
	}

	if msg.err != nil {
		m.lastErr = msg.err.Error()
		active.Model.MarkStale()
		m.logger.Warn("fetch_failed", "view", msg.id, "error", msg.err)
		return m
	}

	m.lastErr = ""
	m.lastUpdate = time.Now()

	rows := msg.rows
	for i := range rows {
		m.decorate(&rows[i])
		if resolve.Resolvable(rows[i].Addr) {
			if _, known := m.dns[rows[i].Addr]; !known && m.cfg.Resolver != nil {
				m.cfg.Resolver.Request(rows[i].Addr)
			}
		}
	}
	active.Model.ApplyData(rows)

	switch msg.id {
	case page.ViewBackendPool:
		m.noteBackendHealth(rows)
	case page.ViewConnsUserHost, page.ViewConnsByUser:
		m.noteFrontendConnections(rows)
	}
	return m
}

// noteFrontendConnections feeds the frontend gauges from the connection
// sub-pages. The last three cells of both schemas are total/active/idle.
func (m *Model) noteFrontendConnections(rows []page.Row) {
	if m.cfg.Collector == nil {
		return
	}
	var total, active, idle float64
	for _, r := range rows {
		n := len(r.Cells)
		if n < 3 {
			continue
		}
		total += cellFloat(r.Cells[n-3])
		active += cellFloat(r.Cells[n-2])
		idle += cellFloat(r.Cells[n-1])
	}
	m.cfg.Collector.SetFrontendConnections(total, active, idle)
}

func cellFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func (m Model) handleCounters(msg countersMsg) Model {
	if msg.err != nil {
		m.connected = false
		if m.cfg.Collector != nil {
			m.cfg.Collector.SetAdminUp(false)
		}
		m.lastErr = msg.err.Error()
		return m
	}

	m.connected = true
	m.counters = msg.counters
	if msg.version != "" {
		m.serverVersion = msg.version
	}

	now := time.Now()
	m.qps = m.qpsRate.Observe(msg.counters["Questions"])
	m.slowAlert = m.slowRate.Observe(msg.counters["Slow_queries"]) > slowQueryAlertRate
	m.qpsTrend.Append(now, m.qps)
	m.connTrend.Append(now, msg.counters["Client_Connections_connected"])
	if m.qps > m.qpsPeak {
		m.qpsPeak = m.qps
	}
	m.qpsSum += m.qps
	m.qpsCount++

	if c := m.cfg.Collector; c != nil {
		c.SetAdminUp(true)
		c.SetQPS(m.qps)
		c.RecordCounters(msg.counters)
	}
	return m
}

func (m Model) handleResolved(msg resolvedMsg) (Model, tea.Cmd) {
	m.dns[msg.Addr] = msg.Hostname
	if m.cfg.Collector != nil {
		m.cfg.Collector.RecordLookup(msg.Hostname != "")
	}
	if msg.Hostname != "" {
		// Re-decorate whatever the active view is showing.
		m.activeView().Model.Amend(m.decorate)
	}
	return m, m.resolveWaitCmd()
}

// decorate appends the resolved hostname to a row's address cell and its
// search text. Idempotent: only the bare address cell matches.
func (m Model) decorate(r *page.Row) {
	if r.Addr == "" {
		return
	}
	host, ok := m.dns[r.Addr]
	if !ok || host == "" {
		return
	}
	for i, c := range r.Cells {
		if c == r.Addr {
			r.Cells[i] = r.Addr + " (" + host + ")"
		}
	}
	if !strings.Contains(r.SearchText, strings.ToLower(host)) {
		r.SearchText += " " + strings.ToLower(host)
	}
}

// noteBackendHealth flags the header badge and feeds the backend gauges.
// The connections cell renders as "used/total", so the pool totals come
// back out of the formatted row.
func (m *Model) noteBackendHealth(rows []page.Row) {
	alert := false
	online, shunned, offline := 0, 0, 0
	var used, free float64
	for _, r := range rows {
		if r.Leveled && r.Level == classify.LevelSaturated {
			alert = true
		}
		if len(r.Cells) > 4 {
			switch strings.ToUpper(r.Cells[4]) {
			case "ONLINE":
				online++
			case "SHUNNED":
				shunned++
			default:
				offline++
			}
		}
		if len(r.Cells) > 6 {
			if u, total, ok := strings.Cut(r.Cells[6], "/"); ok {
				uu := cellFloat(u)
				used += uu
				free += cellFloat(total) - uu
			}
		}
	}
	m.backendAlert = alert
	m.backendOnline = online
	m.backendTotal = online + shunned + offline
	if m.cfg.Collector != nil {
		m.cfg.Collector.SetBackendCounts(online, shunned, offline)
		m.cfg.Collector.SetBackendConnections(used, free)
	}
}

// slowQueryAlertRate is the sustained slow-query rate, in queries per
// second, above which the header badge degrades to warning.
const slowQueryAlertRate = 1.0

// health derives the header badge state.
func (m Model) health() Health {
	switch {
	case !m.connected:
		return HealthUnknown
	case m.backendAlert:
		return HealthCritical
	case m.lastErr != "" || m.slowAlert:
		return HealthWarning
	default:
		return HealthOK
	}
}

// setNotice shows a transient footer message.
func (m *Model) setNotice(s string) {
	m.notice = s
	m.noticeAt = time.Now()
}

// rebuildLogRows applies the level filter and refreshes the logs view.
func (m *Model) rebuildLogRows() {
	var kept []proxysql.LogEntry
	for _, e := range m.logEntries {
		if m.logLevels[e.Level] {
			kept = append(kept, e)
		}
	}
	logsView := m.findView(page.ViewLogs)
	if logsView == nil {
		return
	}
	logsView.Model.ApplyData(proxysql.LogRows(kept))
	if m.logFollow {
		logsView.Model.JumpBottom()
	}
}

func (m Model) findView(id page.ViewID) *page.View {
	for _, p := range m.pages {
		for _, v := range p.Views {
			if v.ID == id {
				return v
			}
		}
	}
	return nil
}

// =============================================================================
// Key Handling
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeFiltering:
		return m.handleFilterKey(msg)
	case modeConfirming:
		return m.handleConfirmKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vm := &m.activeView().Model
	switch msg.Type {
	case tea.KeyEscape:
		m.filterInput = ""
		vm.ApplyFilter("")
		m.mode = modeBrowsing
	case tea.KeyEnter:
		m.mode = modeBrowsing
	case tea.KeyBackspace:
		if len(m.filterInput) > 0 {
			_, size := utf8.DecodeLastRuneInString(m.filterInput)
			m.filterInput = m.filterInput[:len(m.filterInput)-size]
			vm.ApplyFilter(m.filterInput)
		}
	case tea.KeyRunes, tea.KeySpace:
		m.filterInput += string(msg.Runes)
		vm.ApplyFilter(m.filterInput)
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pending := m.pending
	m.pending = ""
	m.mode = modeBrowsing
	if key.Matches(msg, m.keys.Confirm) {
		return m, m.actionCmd(pending)
	}
	m.setNotice("cancelled")
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vm := &m.activeView().Model
	onLogs := m.activePage().ID == "logs"

	// Logs page level toggles shadow the scroll and refresh keys.
	if onLogs {
		if handled, model := m.handleLogsKey(msg); handled {
			return model, nil
		}
	}

	if idx, ok := digitPage(msg.String()); ok && idx < len(m.pages) {
		m.pageIdx = idx
		return m, m.fetchCmd(m.activeView().ID)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.cfg.Resolver != nil {
			m.cfg.Resolver.Close()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.PrevPage):
		m.pageIdx = (m.pageIdx + len(m.pages) - 1) % len(m.pages)
		return m, m.fetchCmd(m.activeView().ID)
	case key.Matches(msg, m.keys.NextPage):
		m.pageIdx = (m.pageIdx + 1) % len(m.pages)
		return m, m.fetchCmd(m.activeView().ID)

	case key.Matches(msg, m.keys.NextView):
		n := len(m.activePage().Views)
		m.viewIdx[m.pageIdx] = (m.viewIdx[m.pageIdx] + 1) % n
		m.filterInput = m.activeView().Model.Query()
		return m, m.fetchCmd(m.activeView().ID)
	case key.Matches(msg, m.keys.PrevView):
		n := len(m.activePage().Views)
		m.viewIdx[m.pageIdx] = (m.viewIdx[m.pageIdx] + n - 1) % n
		m.filterInput = m.activeView().Model.Query()
		return m, m.fetchCmd(m.activeView().ID)

	case key.Matches(msg, m.keys.Up):
		vm.Scroll(-1)
		m.stopFollowing(onLogs)
	case key.Matches(msg, m.keys.Down):
		vm.Scroll(1)
		m.stopFollowing(onLogs)
	case key.Matches(msg, m.keys.HalfPgUp):
		vm.PageUp(m.viewportRows() / 2)
		m.stopFollowing(onLogs)
	case key.Matches(msg, m.keys.HalfPgDown):
		vm.PageDown(m.viewportRows() / 2)
		m.stopFollowing(onLogs)
	case key.Matches(msg, m.keys.Top):
		vm.JumpTop()
		m.stopFollowing(onLogs)
	case key.Matches(msg, m.keys.Bottom):
		vm.JumpBottom()

	case key.Matches(msg, m.keys.Filter):
		m.mode = modeFiltering
		m.filterInput = vm.Query()
	case key.Matches(msg, m.keys.Clear):
		m.filterInput = ""
		vm.ApplyFilter("")

	case key.Matches(msg, m.keys.Action):
		if id, ok := viewActions[m.activeView().ID]; ok {
			m.pending = id
			m.mode = modeConfirming
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.fetchCmd(m.activeView().ID), m.countersCmd())
	}
	return m, nil
}

// handleLogsKey toggles log level visibility and follow mode.
func (m Model) handleLogsKey(msg tea.KeyMsg) (bool, Model) {
	toggle := func(l proxysql.LogLevel) {
		m.logLevels[l] = !m.logLevels[l]
		m.rebuildLogRows()
	}
	switch {
	case key.Matches(msg, m.keys.LogErrors):
		toggle(proxysql.LogError)
	case key.Matches(msg, m.keys.LogWarnings):
		toggle(proxysql.LogWarn)
	case key.Matches(msg, m.keys.LogInfo):
		toggle(proxysql.LogInfo)
	case key.Matches(msg, m.keys.LogDebug):
		toggle(proxysql.LogDebug)
	case key.Matches(msg, m.keys.LogAll):
		for l := range m.logLevels {
			m.logLevels[l] = true
		}
		m.rebuildLogRows()
	case key.Matches(msg, m.keys.LogFollow):
		m.logFollow = !m.logFollow
		if m.logFollow {
			m.rebuildLogRows()
		}
	default:
		return false, m
	}
	return true, m
}

// stopFollowing drops out of tail mode when the user scrolls the logs.
func (m *Model) stopFollowing(onLogs bool) {
	if onLogs {
		m.logFollow = false
	}
}

// viewActions maps each view to its destructive admin action, if any.
var viewActions = map[page.ViewID]proxysql.ActionID{
	page.ViewQueryPatterns:   proxysql.ActionResetDigest,
	page.ViewBackendPool:     proxysql.ActionResetBackend,
	page.ViewRuntimeBackends: proxysql.ActionResetBackend,
	page.ViewRuntimeRules:    proxysql.ActionReloadRules,
}

// =============================================================================
// Commands
// =============================================================================

// tickCmd schedules the next refresh.
func (m Model) tickCmd() tea.Cmd {
	interval := m.cfg.RefreshInterval
	if interval <= 0 {
		interval = time.Second
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchCmd fetches rows for one view in the background.
func (m Model) fetchCmd(id page.ViewID) tea.Cmd {
	switch id {
	case page.ViewLogs:
		path, maxLines := m.cfg.LogPath, m.cfg.LogMaxLines
		return func() tea.Msg {
			return logsMsg{entries: proxysql.TailLog(path, maxLines)}
		}
	case page.ViewPerformance:
		// Fed by the unconditional counters fetch.
		return nil
	}

	src := m.cfg.Source
	return func() tea.Msg {
		start := time.Now()
		rows, err := src.Fetch(context.Background(), id)
		return dataMsg{id: id, rows: rows, elapsed: time.Since(start), err: err}
	}
}

// countersCmd fetches the global counters; these feed the trends and the
// header regardless of the active page.
func (m Model) countersCmd() tea.Cmd {
	src := m.cfg.Source
	needVersion := m.serverVersion == ""
	return func() tea.Msg {
		ctx := context.Background()
		counters, err := src.Counters(ctx)
		msg := countersMsg{counters: counters, err: err}
		if err == nil && needVersion {
			msg.version = src.Version(ctx)
		}
		return msg
	}
}

// resolveWaitCmd drains one reverse DNS result.
func (m Model) resolveWaitCmd() tea.Cmd {
	if m.cfg.Resolver == nil {
		return nil
	}
	results := m.cfg.Resolver.Results()
	return func() tea.Msg {
		r, ok := <-results
		if !ok {
			return nil
		}
		return resolvedMsg(r)
	}
}

// actionCmd executes one confirmed admin action.
func (m Model) actionCmd(id proxysql.ActionID) tea.Cmd {
	src := m.cfg.Source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return actionResultMsg{id: id, err: src.Execute(ctx, id)}
	}
}
