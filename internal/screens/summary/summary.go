// Package summary shows the result of a finished exam attempt.
package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/rccmquiz/rccm/internal/router"
	"github.com/rccmquiz/rccm/internal/screen"
	"github.com/rccmquiz/rccm/internal/session"
	"github.com/rccmquiz/rccm/internal/ui/components"
	"github.com/rccmquiz/rccm/internal/ui/layout"
	"github.com/rccmquiz/rccm/internal/ui/theme"
)

const stemWidth = 36

// SummaryScreen displays the attempt summary.
type SummaryScreen struct {
	summary *session.Summary
	stems   map[int64]string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. stems maps question ids to their text for
// the breakdown and may be nil.
func New(summary *session.Summary, stems map[int64]string) *SummaryScreen {
	return &SummaryScreen{summary: summary, stems: stems}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "結果"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Departments"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	heading := sum.Department.Name()
	if sum.Year != 0 {
		heading = fmt.Sprintf("%s  %d年度", heading, sum.Year)
	}
	b.WriteString(center(theme.Title.Render(heading)))
	b.WriteString("\n\n")

	score := fmt.Sprintf("%d / %d 正解   正答率 %.0f%%", sum.CorrectCount, sum.TotalCount, sum.Accuracy*100)
	b.WriteString(center(theme.Body.Bold(true).Render(score)))
	b.WriteString("\n")
	if sum.ReviewCount > 0 {
		b.WriteString(center(theme.Review.Render(
			fmt.Sprintf("復習問題 %d / %d 正解", sum.ReviewCorrect, sum.ReviewCount))))
		b.WriteString("\n")
	}
	b.WriteString(center(theme.Dimmed.Render("回答時間 " + formatDuration(sum.Duration))))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("", sum.CorrectCount, sum.TotalCount, min(width-8, 60))
	bar.ShowPercent = true
	b.WriteString(center(bar.View()))
	b.WriteString("\n\n")

	b.WriteString(center(theme.Rule.Render(strings.Repeat("─", min(width-8, 60)))))
	b.WriteString("\n")
	for i, r := range sum.Breakdown {
		b.WriteString(center(s.renderRow(i, r)))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *SummaryScreen) renderRow(i int, r session.QuestionResult) string {
	mark := theme.Correct.Render("○")
	if !r.Correct {
		mark = theme.Incorrect.Render("×")
	}
	tag := "    "
	if r.Review {
		tag = theme.Review.Render("復習")
	}
	stem := truncate(s.stems[r.QuestionID], stemWidth)
	stem += strings.Repeat(" ", max(stemWidth-lipgloss.Width(stem), 0))
	return fmt.Sprintf("%2d. %s %s  %s  %s  %s",
		i+1, mark, r.Chosen, tag, theme.Body.Render(stem),
		theme.Dimmed.Render(formatDuration(r.Elapsed)))
}

func formatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// truncate cuts s to at most width display cells.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if w+rw > width-1 {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	return b.String() + "…"
}
