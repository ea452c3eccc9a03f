// Package exam is the interactive exam screen: one question at a time with
// immediate feedback, then the summary.
package exam

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	engine "github.com/rccmquiz/rccm/internal/exam"
	"github.com/rccmquiz/rccm/internal/pool"
	"github.com/rccmquiz/rccm/internal/question"
	"github.com/rccmquiz/rccm/internal/router"
	"github.com/rccmquiz/rccm/internal/screen"
	"github.com/rccmquiz/rccm/internal/screens/summary"
	"github.com/rccmquiz/rccm/internal/session"
	"github.com/rccmquiz/rccm/internal/ui/components"
	"github.com/rccmquiz/rccm/internal/ui/layout"
)

// Engine is the part of the exam engine the screen drives.
type Engine interface {
	Start(ctx context.Context, req engine.StartRequest) (*session.State, error)
	CurrentQuestion(ctx context.Context, userID string) (question.Record, error)
	SubmitAnswer(ctx context.Context, userID string, chosen question.Option, elapsed time.Duration) (*engine.AnswerResult, error)
	Finish(ctx context.Context, userID string) (*session.Summary, error)
}

var _ Engine = (*engine.Engine)(nil)

type phase int

const (
	phaseLoading phase = iota
	phaseQuestion
	phaseSubmitting
	phaseFeedback
	phaseFinishing
)

// ExamScreen implements screen.Screen for one attempt.
type ExamScreen struct {
	eng Engine
	req engine.StartRequest
	now func() time.Time

	phase       phase
	state       *session.State
	current     question.Record
	choice      components.MultiChoice
	result      *engine.AnswerResult
	shownAt     time.Time
	correct     int
	stems       map[int64]string
	quitConfirm bool
	errMsg      string
}

var _ screen.Screen = (*ExamScreen)(nil)
var _ screen.KeyHintProvider = (*ExamScreen)(nil)

// New creates the screen. The attempt is started by Init.
func New(eng Engine, req engine.StartRequest) *ExamScreen {
	return &ExamScreen{
		eng:   eng,
		req:   req,
		now:   time.Now,
		stems: make(map[int64]string),
	}
}

func (s *ExamScreen) Init() tea.Cmd {
	return s.startCmd()
}

func (s *ExamScreen) Title() string {
	return s.req.Department.Name()
}

func (s *ExamScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.quitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave exam"},
			{Key: "N", Description: "Keep going"},
		}
	case s.phase == phaseFeedback:
		return []layout.KeyHint{{Key: "any key", Description: "Next"}}
	}
	return []layout.KeyHint{
		{Key: "A-D / 1-4", Description: "Answer"},
		{Key: "↑↓ Enter", Description: "Select"},
		{Key: "Esc", Description: "Leave"},
	}
}

func (s *ExamScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)
	case questionMsg:
		return s.handleQuestion(msg)
	case answeredMsg:
		return s.handleAnswered(msg)
	case finishedMsg:
		return s.handleFinished(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *ExamScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = describe(msg.Err)
		return s, nil
	}
	s.state = msg.State
	return s.handleQuestion(questionMsg{Record: msg.First})
}

func (s *ExamScreen) handleQuestion(msg questionMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = describe(msg.Err)
		return s, nil
	}
	s.current = msg.Record
	s.stems[msg.Record.ID] = msg.Record.Stem
	s.choice = components.NewMultiChoice(msg.Record.Options)
	s.result = nil
	s.shownAt = s.now()
	s.phase = phaseQuestion
	return s, nil
}

func (s *ExamScreen) handleAnswered(msg answeredMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = describe(msg.Err)
		return s, nil
	}
	s.result = msg.Result
	if msg.Result.Correct {
		s.correct++
	}
	s.choice = s.choice.Reveal(msg.Result.CorrectOption)
	s.phase = phaseFeedback
	return s, nil
}

func (s *ExamScreen) handleFinished(msg finishedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = describe(msg.Err)
		return s, nil
	}
	sum := summary.New(msg.Summary, s.stems)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: sum} }
}

func (s *ExamScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.quitConfirm {
		switch key {
		case "y", "Y":
			// The attempt stays active in the store.
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	switch s.phase {
	case phaseFeedback:
		if s.result.Completed {
			s.phase = phaseFinishing
			return s, s.finishCmd()
		}
		s.phase = phaseLoading
		return s, s.nextCmd()

	case phaseQuestion:
		if key == "esc" {
			s.quitConfirm = true
			return s, nil
		}
		s.choice = s.choice.Update(msg)
		if s.choice.Submitted() {
			s.phase = phaseSubmitting
			return s, s.submitCmd(s.choice.Chosen, s.now().Sub(s.shownAt))
		}
	}
	return s, nil
}

func (s *ExamScreen) startCmd() tea.Cmd {
	eng, req := s.eng, s.req
	return func() tea.Msg {
		ctx := context.Background()
		st, err := eng.Start(ctx, req)
		if err != nil {
			return startedMsg{Err: err}
		}
		rec, err := eng.CurrentQuestion(ctx, req.UserID)
		if err != nil {
			return startedMsg{Err: err}
		}
		return startedMsg{State: st, First: rec}
	}
}

func (s *ExamScreen) nextCmd() tea.Cmd {
	eng, user := s.eng, s.req.UserID
	return func() tea.Msg {
		rec, err := eng.CurrentQuestion(context.Background(), user)
		return questionMsg{Record: rec, Err: err}
	}
}

func (s *ExamScreen) submitCmd(chosen question.Option, elapsed time.Duration) tea.Cmd {
	eng, user := s.eng, s.req.UserID
	return func() tea.Msg {
		res, err := eng.SubmitAnswer(context.Background(), user, chosen, elapsed)
		return answeredMsg{Result: res, Err: err}
	}
}

func (s *ExamScreen) finishCmd() tea.Cmd {
	eng, user := s.eng, s.req.UserID
	return func() tea.Msg {
		sum, err := eng.Finish(context.Background(), user)
		return finishedMsg{Summary: sum, Err: err}
	}
}

// describe turns engine errors into a line for the error view.
func describe(err error) string {
	var insuf *pool.InsufficientQuestionsError
	if errors.As(err, &insuf) {
		return fmt.Sprintf("問題数が不足しています: %d問中 %d問のみ (不足 %d問)",
			insuf.Requested, insuf.Available, insuf.Deficit)
	}
	return err.Error()
}
