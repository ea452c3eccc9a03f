package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/rccmquiz/rccm/internal/ui/theme"
)

// MenuItem is one selectable row. Detail is rendered dimmed after the label.
type MenuItem struct {
	Label    string
	Detail   string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical navigation menu that skips disabled items.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a menu with the cursor on the first enabled item.
func NewMenu(items []MenuItem) Menu {
	selected := 0
	for i, item := range items {
		if !item.Disabled {
			selected = i
			break
		}
	}
	return Menu{
		Items:    items,
		Selected: selected,
	}
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "enter":
		if m.Selected >= 0 && m.Selected < len(m.Items) {
			item := m.Items[m.Selected]
			if item.Action != nil && !item.Disabled {
				return m, item.Action()
			}
		}
	}

	return m, nil
}

// View renders the menu with labels padded to a common width.
func (m Menu) View() string {
	labelWidth := 0
	for _, item := range m.Items {
		labelWidth = max(labelWidth, lipgloss.Width(item.Label))
	}

	var b strings.Builder
	for i, item := range m.Items {
		prefix := "    "
		style := theme.Unselected
		switch {
		case item.Disabled:
			style = theme.Dimmed
		case i == m.Selected:
			prefix = "  ▸ "
			style = theme.Selected
		}
		label := item.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(item.Label))
		b.WriteString(style.Render(prefix + label))
		if item.Detail != "" {
			b.WriteString("  " + theme.Dimmed.Render(item.Detail))
		}
		b.WriteString("\n")
	}
	return b.String()
}
