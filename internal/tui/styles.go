package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ------- minimal styling helpers (Lip Gloss) -------
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)

	brandStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	navActiveStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("27")).Padding(0, 1)
	navItemStyle    = lipgloss.NewStyle().Padding(0, 1)
	sidebarStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), false, true, false, false).BorderForeground(lipgloss.Color("8")).Padding(1, 1)
	cardStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	cardActiveStyle = cardStyle.BorderForeground(lipgloss.Color("33"))
	noticeStyle     = lipgloss.NewStyle().Border(lipgloss.ThickBorder(), false, false, false, true).BorderForeground(lipgloss.Color("33")).PaddingLeft(1)
	userBubbleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("27")).Padding(0, 1)
	modelLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))

	boxChecked   = "☑"
	boxUnchecked = "☐"
)

// panelString frames inner with the standard rounded border.
func panelString(inner string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	return border.Render(inner)
}

// progressBar renders "[███░░] done/total"; an empty list shows an empty bar.
func progressBar(done, total, width int) string {
	if width <= 0 {
		width = 28
	}
	filled := 0
	if total > 0 {
		filled = int(float64(done) / float64(total) * float64(width))
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %d/%d", done, total)
}
