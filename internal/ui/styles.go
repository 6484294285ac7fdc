package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	ColorPrimary   = lipgloss.Color("205") // Pink
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("160") // Red
	ColorWarning   = lipgloss.Color("214") // Orange/Yellow
	ColorText      = lipgloss.Color("252") // White/Gray

	// Base Styles
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StylePrimary = lipgloss.NewStyle().Foreground(ColorPrimary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleText    = lipgloss.NewStyle().Foreground(ColorText)
)

// Icon returns a styled icon string
func Icon(icon string, style lipgloss.Style) string {
	return style.Render(icon)
}

// StatusStyle picks the color for a task status.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "completed":
		return StyleSuccess
	case "in_progress":
		return StyleWarning
	case "pending":
		return StyleSubtle
	default:
		return StyleText
	}
}

// LevelStyle picks the color for a complexity level.
func LevelStyle(level string) lipgloss.Style {
	switch level {
	case "very_high":
		return StyleError
	case "high":
		return StyleWarning
	case "medium":
		return StylePrimary
	default:
		return StyleSubtle
	}
}
