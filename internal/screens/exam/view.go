package exam

import (
	"fmt"
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/rccmquiz/rccm/internal/ui/components"
	"github.com/rccmquiz/rccm/internal/ui/theme"
)

func (s *ExamScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderMessage(width, theme.Incorrect, s.errMsg)
	case s.quitConfirm:
		return renderMessage(width, theme.Body,
			"試験を中断しますか?\n\n回答済みの問題と復習記録は保存されています。")
	case s.state == nil || (s.phase == phaseLoading && s.current.ID == 0):
		return renderMessage(width, theme.Dimmed, "問題を準備しています...")
	}

	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n")
	b.WriteString(theme.Rule.Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	stem := lipgloss.NewStyle().
		Width(max(width-6, 20)).
		PaddingLeft(2).
		Foreground(theme.Text).
		Bold(true).
		Render(s.current.Stem)
	b.WriteString(stem)
	b.WriteString("\n\n")
	b.WriteString(s.choice.View(width))

	if s.phase == phaseFeedback && s.result != nil {
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(width))
	}
	return b.String()
}

func (s *ExamScreen) renderInfoLine(width int) string {
	answered := s.state.CurrentIndex
	if s.result != nil {
		answered = s.result.Answered
	}
	pos := min(answered+1, s.state.Total())
	if s.phase == phaseFeedback {
		pos = answered
	}

	left := theme.Label.Render(fmt.Sprintf("  第%d問 / %d", pos, s.state.Total()))
	if s.state.IsReview(s.current.ID) {
		left += "  " + theme.Review.Render("復習")
	}
	if s.current.Year != 0 {
		left += "  " + theme.Dimmed.Render(fmt.Sprintf("%d年度", s.current.Year))
	}

	bar := components.NewProgressBar("", answered, s.state.Total(), 30)
	right := bar.View() + theme.Dimmed.Render(fmt.Sprintf("  正解 %d", s.correct))

	pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if pad < 1 {
		return left + "\n  " + right
	}
	return left + strings.Repeat(" ", pad) + right
}

func (s *ExamScreen) renderFeedback(width int) string {
	res := s.result
	var b strings.Builder
	if res.Correct {
		b.WriteString(theme.Correct.Render("  ○ 正解"))
	} else {
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf("  × 不正解  正答は %s", res.CorrectOption)))
	}
	b.WriteString(theme.Dimmed.Render(fmt.Sprintf("   次回復習まで %d日", s.reviewDays())))
	b.WriteString("\n")

	body := lipgloss.NewStyle().Width(max(width-6, 20)).PaddingLeft(2)
	if res.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(body.Foreground(theme.Text).Render(res.Explanation))
		b.WriteString("\n")
	}
	if s.current.Reference != "" {
		b.WriteString(body.Foreground(theme.TextDim).Render("出典: " + s.current.Reference))
		b.WriteString("\n")
	}
	if s.current.PracticalTip != "" {
		b.WriteString(body.Foreground(theme.Secondary).Render("実務ポイント: " + s.current.PracticalTip))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *ExamScreen) reviewDays() int {
	r := s.result.Record
	return int(math.Round(r.NextDueAt.Sub(r.LastReviewedAt).Hours() / 24))
}

func renderMessage(width int, style lipgloss.Style, msg string) string {
	return "\n\n" + style.Width(width).Align(lipgloss.Center).Render(msg)
}
