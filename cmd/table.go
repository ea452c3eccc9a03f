package cmd

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/rccmquiz/rccm/internal/ui/theme"
)

// newTable returns a borderless table with a bold header row. Cell widths
// are measured by lipgloss, so Japanese names line up.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderHeader(false).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.Label.PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})
}
