package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/rccmquiz/rccm/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar with an optional label
// and a count or percent suffix.
type ProgressBar struct {
	Label string
	Done  int
	Total int

	// ShowPercent renders "NN%" instead of "done/total".
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a progress bar for done out of total.
func NewProgressBar(label string, done, total, width int) ProgressBar {
	return ProgressBar{
		Label: label,
		Done:  done,
		Total: total,
		Width: width,
	}
}

// Fraction returns Done/Total clamped to [0,1].
func (p ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Done) / float64(p.Total)
	return min(max(f, 0), 1)
}

func (p ProgressBar) suffix() string {
	if p.ShowPercent {
		return fmt.Sprintf("  %d%%", int(p.Fraction()*100))
	}
	return fmt.Sprintf("  %d/%d", p.Done, p.Total)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	suffix := p.suffix()
	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(suffix)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Fraction())
	empty := barWidth - filled

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", empty))
	result += theme.Dimmed.Render(suffix)
	return result
}
