package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/rccmquiz/rccm/internal/question"
	"github.com/rccmquiz/rccm/internal/ui/theme"
)

// MultiChoice is the A-D option selector. It only tracks the cursor and
// the chosen option; grading comes from outside through Reveal.
type MultiChoice struct {
	Options  [4]string
	Selected int

	Chosen   question.Option
	Revealed bool
	Correct  question.Option
}

// NewMultiChoice creates a selector over the four option texts.
func NewMultiChoice(options [4]string) MultiChoice {
	return MultiChoice{Options: options}
}

// Submitted reports whether an option was chosen.
func (m MultiChoice) Submitted() bool {
	return m.Chosen != ""
}

// Reveal marks the correct option for feedback rendering.
func (m MultiChoice) Reveal(correct question.Option) MultiChoice {
	m.Revealed = true
	m.Correct = correct
	return m
}

// Update handles arrows, Enter, and the letter and digit shortcuts.
func (m MultiChoice) Update(msg tea.Msg) MultiChoice {
	if m.Submitted() {
		return m
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
		return m
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
		return m
	case "enter":
		m.Chosen, _ = question.OptionAt(m.Selected)
		return m
	case "1", "2", "3", "4":
		m.Selected = int(key[0] - '1')
		m.Chosen, _ = question.OptionAt(m.Selected)
		return m
	}
	if o, err := question.ParseOption(key); err == nil {
		m.Selected = o.Index()
		m.Chosen = o
	}
	return m
}

// View renders the options.
func (m MultiChoice) View(width int) string {
	var b strings.Builder
	for i, text := range m.Options {
		opt, _ := question.OptionAt(i)
		prefix := "  "
		if i == m.Selected && !m.Submitted() {
			prefix = "▸ "
		}
		line := lipgloss.NewStyle().Width(max(width-4, 10)).
			Render(fmt.Sprintf("%s%s)  %s", prefix, opt, text))

		var style lipgloss.Style
		switch {
		case m.Revealed && opt == m.Correct:
			style = theme.Correct
		case m.Revealed && opt == m.Chosen:
			style = theme.Incorrect
		case m.Revealed:
			style = theme.Dimmed
		case i == m.Selected:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
