package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap declares every binding the dashboard dispatches on. Bindings are
// grouped by mode; the filter and confirm modes consume most keys raw and
// only consult the few bindings listed for them.
type keyMap struct {
	// Navigation
	Quit     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	NextView key.Binding
	PrevView key.Binding

	// Scrolling
	Up         key.Binding
	Down       key.Binding
	HalfPgUp   key.Binding
	HalfPgDown key.Binding
	Top        key.Binding
	Bottom     key.Binding

	// Actions
	Filter  key.Binding
	Clear   key.Binding
	Action  key.Binding
	Refresh key.Binding

	// Confirm mode
	Confirm key.Binding

	// Logs page
	LogErrors   key.Binding
	LogWarnings key.Binding
	LogInfo     key.Binding
	LogDebug    key.Binding
	LogAll      key.Binding
	LogFollow   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next page"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev view"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		HalfPgUp: key.NewBinding(
			key.WithKeys("u", "pgup"),
			key.WithHelp("u", "half page up"),
		),
		HalfPgDown: key.NewBinding(
			key.WithKeys("d", "pgdown"),
			key.WithHelp("d", "half page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),

		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear"),
		),
		Action: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear stats"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),

		LogErrors: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "errors"),
		),
		LogWarnings: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "warnings"),
		),
		LogInfo: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "info"),
		),
		LogDebug: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "debug"),
		),
		LogAll: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "all levels"),
		),
		LogFollow: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "follow"),
		),
	}
}

// digitPage maps the number row to a page index.
func digitPage(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}
