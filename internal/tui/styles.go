// Package tui renders queue inspection output for the terminal.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#5A67D8", Dark: "#7C3AED"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#38A169", Dark: "#48BB78"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#D69E2E", Dark: "#F6E05E"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#E53E3E", Dark: "#FC8181"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#718096", Dark: "#A0AEC0"}
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A202C", Dark: "#F7FAFC"}
	ColorBorder  = lipgloss.AdaptiveColor{Light: "#CBD5E0", Dark: "#4A5568"}
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	LabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMuted)

	ValueStyle   = lipgloss.NewStyle().Foreground(ColorText)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

// IsTTY returns true if stdout is a terminal
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// StatusStyle picks the style for a job outcome or status word.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "success", "acked":
		return SuccessStyle
	case "retried":
		return WarningStyle
	case "failure", "failed":
		return ErrorStyle
	default:
		return ValueStyle
	}
}
