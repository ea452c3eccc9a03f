package exam

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rccmquiz/rccm/internal/corpus"
	"github.com/rccmquiz/rccm/internal/department"
	engine "github.com/rccmquiz/rccm/internal/exam"
	"github.com/rccmquiz/rccm/internal/question"
	"github.com/rccmquiz/rccm/internal/router"
	"github.com/rccmquiz/rccm/internal/screen"
	"github.com/rccmquiz/rccm/internal/screens/summary"
	"github.com/rccmquiz/rccm/internal/store"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func newEngine(t *testing.T, roadQuestions int) *engine.Engine {
	t.Helper()
	var recs []question.Record
	for i := 0; i < roadQuestions; i++ {
		recs = append(recs, question.Record{
			ID:          question.SpecialistBand.Min + int64(i),
			Tier:        question.TierSpecialist,
			Category:    department.Road.Name(),
			Year:        2019,
			Stem:        fmt.Sprintf("道路問題 %d", i),
			Options:     [4]string{"正しい", "誤り1", "誤り2", "誤り3"},
			Correct:     question.OptionA,
			Explanation: "解説です",
		})
	}
	c, err := corpus.New(recs)
	require.NoError(t, err)

	st, err := store.Open("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	eng, err := engine.New(engine.Options{
		Questions: c,
		Attempts:  st.Attempts(),
		Reviews:   st.Reviews(),
		Rand:      rand.New(rand.NewPCG(7, 7)),
	})
	require.NoError(t, err)
	return eng
}

func roadRequest(count int) engine.StartRequest {
	return engine.StartRequest{UserID: "u1", Department: department.Road, Year: 2019, Count: count}
}

// step feeds msg to the screen and runs the returned command once.
func step(t *testing.T, s screen.Screen, msg tea.Msg) (screen.Screen, tea.Msg) {
	t.Helper()
	next, cmd := s.Update(msg)
	if cmd == nil {
		return next, nil
	}
	return next, cmd()
}

func TestExamScreen_FullAttempt(t *testing.T) {
	eng := newEngine(t, 5)
	s := New(eng, roadRequest(3))
	assert.Equal(t, "道路", s.Title())

	var scr screen.Screen = s
	scr, _ = step(t, scr, s.Init()())
	require.Equal(t, phaseQuestion, s.phase)
	assert.Contains(t, scr.View(100, 30), "道路問題")
	assert.Contains(t, scr.View(100, 30), "第1問 / 3")

	answers := []rune{'a', 'b', '1'}
	var msg tea.Msg
	for i, key := range answers {
		scr, msg = step(t, scr, keyPress(key))
		require.IsType(t, answeredMsg{}, msg)
		scr, _ = step(t, scr, msg)
		require.Equal(t, phaseFeedback, s.phase)

		view := scr.View(100, 30)
		if key == 'b' {
			assert.Contains(t, view, "不正解")
			assert.Contains(t, view, "正答は A")
		} else {
			assert.Contains(t, view, "正解")
		}
		assert.Contains(t, view, "解説です")

		scr, msg = step(t, scr, keyPress(' '))
		if i < len(answers)-1 {
			require.IsType(t, questionMsg{}, msg)
			scr, _ = step(t, scr, msg)
		}
	}

	require.IsType(t, finishedMsg{}, msg)
	fin := msg.(finishedMsg)
	require.NoError(t, fin.Err)
	assert.Equal(t, 2, fin.Summary.CorrectCount)

	_, msg = step(t, scr, msg)
	replace, ok := msg.(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &summary.SummaryScreen{}, replace.Screen)
	assert.Contains(t, replace.Screen.View(100, 30), "2 / 3 正解")
}

func TestExamScreen_InsufficientQuestions(t *testing.T) {
	eng := newEngine(t, 4)
	s := New(eng, roadRequest(10))

	var scr screen.Screen = s
	scr, _ = step(t, scr, s.Init()())
	view := scr.View(100, 30)
	assert.Contains(t, view, "不足 6問")

	_, msg := step(t, scr, keyPress('x'))
	assert.IsType(t, router.PopScreenMsg{}, msg)
}

func TestExamScreen_QuitConfirm(t *testing.T) {
	eng := newEngine(t, 5)
	s := New(eng, roadRequest(3))

	var scr screen.Screen = s
	scr, _ = step(t, scr, s.Init()())

	scr, msg := step(t, scr, specialKey(tea.KeyEscape))
	assert.Nil(t, msg)
	assert.True(t, s.quitConfirm)
	assert.Contains(t, scr.View(100, 30), "中断")

	scr, _ = step(t, scr, keyPress('n'))
	assert.False(t, s.quitConfirm)

	scr, _ = step(t, scr, specialKey(tea.KeyEscape))
	_, msg = step(t, scr, keyPress('y'))
	assert.IsType(t, router.PopScreenMsg{}, msg)

	// Leaving keeps the attempt active.
	active, err := eng.Active(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, active.CurrentIndex)
}

func TestExamScreen_ArrowSelection(t *testing.T) {
	eng := newEngine(t, 5)
	s := New(eng, roadRequest(1))

	var scr screen.Screen = s
	scr, _ = step(t, scr, s.Init()())
	scr, _ = step(t, scr, specialKey(tea.KeyDown))
	scr, msg := step(t, scr, specialKey(tea.KeyEnter))
	require.IsType(t, answeredMsg{}, msg)
	res := msg.(answeredMsg).Result
	assert.Equal(t, question.OptionB, res.Chosen)
	assert.True(t, res.Completed)

	_, _ = step(t, scr, msg)
	assert.Contains(t, s.KeyHints()[0].Description, "Next")
}
