// Package ui provides the visual styling for prism CLI output.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary = lipgloss.Color("#5A56E0")
	ColorAccent  = lipgloss.Color("#8BC34A")
	ColorMuted   = lipgloss.Color("8")
	ColorError   = lipgloss.Color("#e53935")
)

// Styles bundles the lipgloss styles used by the prism commands.
type Styles struct {
	Title  lipgloss.Style
	Bold   lipgloss.Style
	Body   lipgloss.Style
	Muted  lipgloss.Style
	Accent lipgloss.Style
	Error  lipgloss.Style
}

// DefaultStyles returns the standard prism styling.
func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		Bold:   lipgloss.NewStyle().Bold(true),
		Body:   lipgloss.NewStyle(),
		Muted:  lipgloss.NewStyle().Foreground(ColorMuted),
		Accent: lipgloss.NewStyle().Foreground(ColorAccent),
		Error:  lipgloss.NewStyle().Foreground(ColorError),
	}
}
