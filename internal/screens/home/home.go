// Package home is the department picker shown when the app starts.
package home

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/rccmquiz/rccm/internal/corpus"
	"github.com/rccmquiz/rccm/internal/department"
	engine "github.com/rccmquiz/rccm/internal/exam"
	"github.com/rccmquiz/rccm/internal/question"
	"github.com/rccmquiz/rccm/internal/router"
	"github.com/rccmquiz/rccm/internal/screen"
	examscreen "github.com/rccmquiz/rccm/internal/screens/exam"
	"github.com/rccmquiz/rccm/internal/screens/history"
	"github.com/rccmquiz/rccm/internal/stats"
	"github.com/rccmquiz/rccm/internal/ui/components"
	"github.com/rccmquiz/rccm/internal/ui/layout"
	"github.com/rccmquiz/rccm/internal/ui/theme"
)

// DueSource reports due review counts per department.
type DueSource interface {
	Due(ctx context.Context, userID string) ([]stats.DueCount, error)
}

// Options configures the picker. Every exam it starts uses the same
// year, count and review ratio.
type Options struct {
	Engine      examscreen.Engine
	Due         DueSource
	History     history.Source // optional; enables the h key
	Groups      []corpus.Group
	UserID      string
	Year        int
	Count       int
	ReviewRatio float64
}

// DueLoadedMsg carries fresh due counts. The app shell also reads it for
// the header.
type DueLoadedMsg struct {
	Total  int
	ByName map[string]int
	Err    error
}

// HomeScreen lists the departments with their question and due counts.
type HomeScreen struct {
	opts   Options
	menu   components.Menu
	due    map[string]int
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Refresher = (*HomeScreen)(nil)

// New creates the picker.
func New(opts Options) *HomeScreen {
	h := &HomeScreen{opts: opts}
	h.menu = components.NewMenu(h.items())
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadDue()
}

// Refresh reloads due counts after an exam screen is popped.
func (h *HomeScreen) Refresh() tea.Cmd {
	return h.loadDue()
}

func (h *HomeScreen) Title() string {
	return "部門選択"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start exam"},
		{Key: "h", Description: "History"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case DueLoadedMsg:
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.due = msg.ByName
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.items())
		if selected < len(h.menu.Items) && !h.menu.Items[selected].Disabled {
			h.menu.Selected = selected
		}
		return h, nil

	case tea.KeyMsg:
		if msg.String() == "h" && h.opts.History != nil {
			scr := history.New(h.opts.History, h.opts.UserID)
			return h, func() tea.Msg { return router.PushScreenMsg{Screen: scr} }
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var title string
	if h.opts.Year != 0 {
		title = fmt.Sprintf("%d年度  %d問", h.opts.Year, h.opts.Count)
	} else {
		title = fmt.Sprintf("全年度  %d問", h.opts.Count)
	}
	if h.opts.ReviewRatio > 0 {
		title += fmt.Sprintf("  復習 最大%.0f%%", h.opts.ReviewRatio*100)
	}

	out := "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Subtitle.Render(title)) + "\n\n"
	out += h.menu.View()
	if h.errMsg != "" {
		out += "\n" + theme.Incorrect.Render("  "+h.errMsg)
	}
	return out
}

func (h *HomeScreen) items() []components.MenuItem {
	var items []components.MenuItem
	for _, info := range department.All() {
		d := info.Department
		year := h.opts.Year
		if info.Tier == question.TierBasic {
			year = 0
		}
		avail := h.availableFor(d, year)

		detail := fmt.Sprintf("%4d問", avail)
		if n := h.due[info.Name]; n > 0 {
			detail += fmt.Sprintf("  復習 %d", n)
		}
		req := engine.StartRequest{
			UserID:      h.opts.UserID,
			Department:  d,
			Year:        year,
			Count:       h.opts.Count,
			ReviewRatio: h.opts.ReviewRatio,
		}
		items = append(items, components.MenuItem{
			Label:    info.Name,
			Detail:   detail,
			Disabled: avail < h.opts.Count,
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: examscreen.New(h.opts.Engine, req)}
				}
			},
		})
	}
	return items
}

// availableFor counts the questions of d in year, or in every year for 0.
func (h *HomeScreen) availableFor(d department.Department, year int) int {
	n := 0
	for _, g := range h.opts.Groups {
		if g.Tier == d.Tier() && g.Category == d.Name() && (year == 0 || g.Year == year) {
			n += g.Count
		}
	}
	return n
}

func (h *HomeScreen) loadDue() tea.Cmd {
	src, user := h.opts.Due, h.opts.UserID
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		counts, err := src.Due(context.Background(), user)
		if err != nil {
			return DueLoadedMsg{Err: err}
		}
		msg := DueLoadedMsg{ByName: make(map[string]int, len(counts))}
		for _, c := range counts {
			msg.ByName[c.Name] = c.Due
			msg.Total += c.Due
		}
		return msg
	}
}
