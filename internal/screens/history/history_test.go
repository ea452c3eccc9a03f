package history

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rccmquiz/rccm/internal/department"
	"github.com/rccmquiz/rccm/internal/router"
	"github.com/rccmquiz/rccm/internal/store"
)

type fakeSource struct {
	attempts map[string]store.AttemptData
	order    []string
	err      error
}

func (f *fakeSource) RecentAttempts(_ context.Context, _ string, limit int) ([]store.AttemptData, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []store.AttemptData
	for _, id := range f.order {
		a := f.attempts[id]
		a.Answers = nil
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeSource) Attempt(_ context.Context, id string) (*store.AttemptData, error) {
	a, ok := f.attempts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func testSource() *fakeSource {
	started := time.Date(2026, 5, 10, 20, 0, 0, 0, time.Local)
	return &fakeSource{
		order: []string{"a2", "a1"},
		attempts: map[string]store.AttemptData{
			"a1": {
				ID: "a1", Department: department.Road.Slug(), Year: 2019,
				QuestionIDs: []int64{11, 12}, CurrentIndex: 2,
				StartedAt: started.Add(-time.Hour), FinishedAt: started.Add(-50 * time.Minute),
				Answers: []store.AnswerData{
					{QuestionID: 11, Position: 0, Chosen: "A", Correct: true},
					{QuestionID: 12, Position: 1, Chosen: "C", Correct: false, Review: true},
				},
			},
			"a2": {
				ID: "a2", Department: department.Basic.Slug(),
				QuestionIDs: []int64{1, 2, 3}, ReviewIDs: []int64{2}, CurrentIndex: 1,
				StartedAt: started,
				Answers:   []store.AnswerData{{QuestionID: 1, Chosen: "B", Correct: true}},
			},
		},
	}
}

func load(t *testing.T, s *HistoryScreen) {
	t.Helper()
	_, _ = s.Update(s.Init()())
	require.True(t, s.loaded)
}

func TestHistory_ListsAttempts(t *testing.T) {
	s := New(testSource(), "u1")
	assert.Contains(t, s.View(100, 30), "Loading")

	load(t, s)
	require.Len(t, s.attempts, 2)
	assert.Len(t, s.attempts[1].Answers, 2, "answers are loaded per attempt")

	view := s.View(100, 30)
	assert.Contains(t, view, "共通")
	assert.Contains(t, view, "1/3")
	assert.Contains(t, view, "復習1")
	assert.Contains(t, view, "(中断)")
	assert.Contains(t, view, "道路 2019年度")
	assert.NotContains(t, view, "#12")
}

func TestHistory_ExpandAndNavigate(t *testing.T) {
	s := New(testSource(), "u1")
	load(t, s)

	_, _ = s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, _ = s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, s.selected)

	_, _ = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	view := s.View(100, 30)
	assert.Contains(t, view, "第2問  #12  C")
	assert.Contains(t, view, "[復習]")

	_, _ = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.NotContains(t, s.View(100, 30), "#12")

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
}

func TestHistory_Empty(t *testing.T) {
	s := New(&fakeSource{}, "u1")
	load(t, s)
	assert.Contains(t, s.View(80, 24), "まだ受験履歴がありません")
}

func TestHistory_Error(t *testing.T) {
	s := New(&fakeSource{err: errors.New("disk full")}, "u1")
	load(t, s)
	assert.Contains(t, s.View(80, 24), "disk full")
}
