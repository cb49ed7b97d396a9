package habits

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	dayStyle = lipgloss.NewStyle().
			Width(4).
			Align(lipgloss.Right)

	fullDayStyle    = dayStyle.Foreground(lipgloss.Color("42")).Bold(true)
	partialDayStyle = dayStyle.Foreground(lipgloss.Color("214"))
)

// newTable returns a bordered table with the shared header styling
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// checkmark renders a completed/pending marker
func checkmark(done bool) string {
	if done {
		return doneStyle.Render("✓")
	}
	return pendingStyle.Render("○")
}
