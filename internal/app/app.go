// Package app is the terminal shell: header, footer and the screen stack.
package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/rccmquiz/rccm/internal/department"
	engine "github.com/rccmquiz/rccm/internal/exam"
	"github.com/rccmquiz/rccm/internal/router"
	"github.com/rccmquiz/rccm/internal/screen"
	examscreen "github.com/rccmquiz/rccm/internal/screens/exam"
	"github.com/rccmquiz/rccm/internal/screens/home"
	"github.com/rccmquiz/rccm/internal/ui/layout"
)

// Options wires the app. When Department is set the exam starts right away
// on top of the department picker.
type Options struct {
	Home       home.Options
	Department department.Department
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	opts   Options
	due    int
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	return AppModel{
		router: router.New(home.New(opts.Home)),
		opts:   opts,
	}
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.router.Active().Init()}
	if m.opts.Department.Valid() {
		h := m.opts.Home
		year := h.Year
		if m.opts.Department == department.Basic {
			year = 0
		}
		scr := examscreen.New(h.Engine, engine.StartRequest{
			UserID:      h.UserID,
			Department:  m.opts.Department,
			Year:        year,
			Count:       h.Count,
			ReviewRatio: h.ReviewRatio,
		})
		cmds = append(cmds, func() tea.Msg { return router.PushScreenMsg{Screen: scr} })
	}
	return tea.Batch(cmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case home.DueLoadedMsg:
		if msg.Err == nil {
			m.due = msg.Total
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), layout.Status{UserID: m.opts.Home.UserID, Due: m.due}, m.width)

	hints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		hints = hp.KeyHints()
	}
	footer := layout.RenderFooter(hints, m.width)

	content := m.router.View(m.width, layout.ContentHeight(header, footer, m.height))
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	_, err := tea.NewProgram(newAppModel(opts)).Run()
	return err
}
