// Package tui provides the live terminal dashboard.
//
// The TUI uses Bubble Tea for the application framework and Lipgloss for
// styling. One Update goroutine owns every view model, trend buffer, and
// the DNS cache; fetches and reverse lookups run in the background and
// deliver their results as messages.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/proxytop/proxytop/internal/classify"
)

// =============================================================================
// Color Palette
// =============================================================================

// Colors based on a modern dark theme
var (
	// Primary colors
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan
	colorAccent    = lipgloss.Color("#F59E0B") // Amber

	// Status colors
	colorSuccess = lipgloss.Color("#10B981") // Green
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red
	colorInfo    = lipgloss.Color("#3B82F6") // Blue

	// Neutral colors
	colorText      = lipgloss.Color("#E5E7EB") // Light gray
	colorTextMuted = lipgloss.Color("#9CA3AF") // Medium gray
	colorTextDim   = lipgloss.Color("#6B7280") // Dark gray
	colorBorder    = lipgloss.Color("#374151") // Border gray
)

// =============================================================================
// Base Styles
// =============================================================================

var (
	baseStyle = lipgloss.NewStyle().
			Foreground(colorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	boldStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)
)

// =============================================================================
// Chrome Styles
// =============================================================================

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorPrimary).
			Bold(true).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true).
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	filterPromptStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorError).
			Bold(true).
			Padding(0, 1)

	staleStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)
)

// =============================================================================
// Status Indicator Styles
// =============================================================================

var (
	statusOK = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	statusWarning = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	statusError = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	statusInfo = lipgloss.NewStyle().
			Foreground(colorInfo).
			Bold(true)
)

// =============================================================================
// Activity Level Styles
// =============================================================================

var levelStyles = map[classify.Level]lipgloss.Style{
	classify.LevelQuiet:     dimStyle,
	classify.LevelIdle:      mutedStyle,
	classify.LevelLight:     lipgloss.NewStyle().Foreground(colorSuccess),
	classify.LevelModerate:  lipgloss.NewStyle().Foreground(colorInfo),
	classify.LevelBusy:      lipgloss.NewStyle().Foreground(colorWarning),
	classify.LevelSaturated: lipgloss.NewStyle().Foreground(colorError).Bold(true),
}

// levelStyle returns the row style for an activity level.
func levelStyle(l classify.Level) lipgloss.Style {
	if s, ok := levelStyles[l]; ok {
		return s
	}
	return baseStyle
}

// =============================================================================
// Health Badge
// =============================================================================

// Health summarizes overall ProxySQL health for the header badge.
type Health int

const (
	HealthOK Health = iota
	HealthWarning
	HealthCritical
	HealthUnknown
)

// HealthBadge returns the styled header badge for a health state.
func HealthBadge(h Health) string {
	switch h {
	case HealthCritical:
		return statusError.Render("● CRITICAL")
	case HealthWarning:
		return statusWarning.Render("● WARNING")
	case HealthUnknown:
		return dimStyle.Render("● UNKNOWN")
	default:
		return statusOK.Render("● HEALTHY")
	}
}

// =============================================================================
// Log Level Styles
// =============================================================================

var logLevelStyles = map[string]lipgloss.Style{
	"ERROR": statusError,
	"WARN":  statusWarning,
	"INFO":  baseStyle,
	"DEBUG": dimStyle,
}

func logLevelStyle(level string) lipgloss.Style {
	if s, ok := logLevelStyles[level]; ok {
		return s
	}
	return baseStyle
}
