// Package screen defines the contract between the app shell and its screens.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/rccmquiz/rccm/internal/ui/layout"
)

// Screen is one page of the terminal app.
type Screen interface {
	Init() tea.Cmd

	// Update handles messages and returns the updated screen.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content between header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Refresher is implemented by screens that reload data when they become
// active again after a screen above them was popped.
type Refresher interface {
	Refresh() tea.Cmd
}
