package tui

import (
	"github.com/charmbracelet/lipgloss"

	"guw.dev/guw/internal/status"
)

var (
	branchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyles = map[status.Status]lipgloss.Style{
		status.Integrated: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		status.Merging:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		status.Pending:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	}
)

// ColorRed colors text red
func ColorRed(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("1")).
		Render(text)
}

// ColorYellow colors text yellow
func ColorYellow(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("3")).
		Render(text)
}

// ColorGreen colors text green
func ColorGreen(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("2")).
		Render(text)
}

// ColorCyan colors text cyan
func ColorCyan(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("6")).
		Render(text)
}

// ColorDim renders secondary text
func ColorDim(text string) string {
	return dimStyle.Render(text)
}

// ColorBranchName highlights a branch name
func ColorBranchName(name string) string {
	return branchStyle.Render(name)
}

// ColorStatus renders a status name in its color
func ColorStatus(s status.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		return s.String()
	}
	return style.Render(s.String())
}
