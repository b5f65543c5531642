package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	TaskIcon     = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	TaskTitle    = lipgloss.NewStyle().Bold(true)
	TaskDate     = lipgloss.NewStyle().Foreground(Faded)
	TaskSelected = lipgloss.NewStyle().Background(Faded)
	DoneIcon     = lipgloss.NewStyle().Foreground(Green).Bold(true).Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().Foreground(Blue).Bold(true)
	LabelStyle = lipgloss.NewStyle().Foreground(Secondary)
	ErrorStyle = lipgloss.NewStyle().Foreground(Red)
	EmptyStyle = lipgloss.NewStyle().Foreground(Grey).Padding(1, 2)
	HelpStyle  = lipgloss.NewStyle().Foreground(Faded)
)

// FormatTime renders an instant the way the app shows dates: two-digit
// day/month/year plus hour and minute, in local time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02/01/06 15:04")
}
