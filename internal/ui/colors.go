package ui

import "github.com/charmbracelet/lipgloss"

const (
	Primary   = lipgloss.Color("#ffffff")
	Secondary = lipgloss.Color("#888888")
	Faded     = lipgloss.Color("#555555")

	// palette of the original app
	Blue  = lipgloss.Color("#3498db")
	Green = lipgloss.Color("#4CD964")
	Red   = lipgloss.Color("#FF3B30")
	Grey  = lipgloss.Color("#8E8E93")
)
