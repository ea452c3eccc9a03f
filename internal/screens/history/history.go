// Package history lists the user's recent attempts with per-answer detail.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/rccmquiz/rccm/internal/department"
	"github.com/rccmquiz/rccm/internal/router"
	"github.com/rccmquiz/rccm/internal/screen"
	"github.com/rccmquiz/rccm/internal/store"
	"github.com/rccmquiz/rccm/internal/ui/layout"
	"github.com/rccmquiz/rccm/internal/ui/theme"
)

// Limit is how many attempts the screen loads.
const Limit = 30

// Source reads attempts.
type Source interface {
	RecentAttempts(ctx context.Context, userID string, limit int) ([]store.AttemptData, error)
	Attempt(ctx context.Context, id string) (*store.AttemptData, error)
}

type historyLoadedMsg struct {
	Attempts []store.AttemptData
	Err      error
}

// HistoryScreen displays past attempts. Enter toggles the answers of the
// selected attempt.
type HistoryScreen struct {
	src      Source
	userID   string
	attempts []store.AttemptData
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(src Source, userID string) *HistoryScreen {
	return &HistoryScreen{
		src:      src,
		userID:   userID,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	src, user := s.src, s.userID
	return func() tea.Msg {
		ctx := context.Background()
		recent, err := src.RecentAttempts(ctx, user, Limit)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		// RecentAttempts leaves answers out; load them per attempt.
		out := make([]store.AttemptData, 0, len(recent))
		for _, a := range recent {
			full, err := src.Attempt(ctx, a.ID)
			if err != nil {
				return historyLoadedMsg{Err: err}
			}
			out = append(out, *full)
		}
		return historyLoadedMsg{Attempts: out}
	}
}

func (s *HistoryScreen) Title() string {
	return "履歴"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.attempts = msg.Attempts
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.attempts) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  まだ受験履歴がありません")
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, a := range s.attempts {
		prefix := "  "
		style := theme.Unselected
		if i == s.selected {
			prefix = "> "
			style = theme.Selected
		}
		b.WriteString(style.Render(prefix + summaryLine(a)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(answerLines(a))
		}
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

// summaryLine renders one attempt as date, department, year, score and
// status.
func summaryLine(a store.AttemptData) string {
	name := a.Department
	if d, err := department.Parse(a.Department); err == nil {
		name = d.Name()
	}
	if a.Year != 0 {
		name = fmt.Sprintf("%s %d年度", name, a.Year)
	}

	correct := 0
	for _, ans := range a.Answers {
		if ans.Correct {
			correct++
		}
	}
	line := fmt.Sprintf("%s  %s  %d/%d", a.StartedAt.Local().Format("01/02 15:04"), name, correct, len(a.QuestionIDs))
	if len(a.ReviewIDs) > 0 {
		line += fmt.Sprintf("  復習%d", len(a.ReviewIDs))
	}
	if a.FinishedAt.IsZero() {
		line += "  (中断)"
	}
	return line
}

func answerLines(a store.AttemptData) string {
	if len(a.Answers) == 0 {
		return theme.Hint.Render("      回答なし") + "\n"
	}
	var b strings.Builder
	for _, ans := range a.Answers {
		mark := theme.Correct.Render("○")
		if !ans.Correct {
			mark = theme.Incorrect.Render("×")
		}
		line := fmt.Sprintf("      %s 第%d問  #%d  %s", mark, ans.Position+1, ans.QuestionID, ans.Chosen)
		if ans.Review {
			line += " " + theme.Review.Render("[復習]")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
