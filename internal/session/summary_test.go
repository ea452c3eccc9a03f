package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rccmquiz/rccm/internal/department"
	"github.com/rccmquiz/rccm/internal/question"
)

func TestBuildSummary_RequiresCompleted(t *testing.T) {
	s := newTestState(t, 1, 2)
	answerCurrent(t, s, question.OptionA, true)

	_, err := BuildSummary(s)
	var oos *OutOfSequenceError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, "finish", oos.Op)
	assert.Equal(t, StatusInProgress, oos.Status)

	_, err = BuildSummary(nil)
	assert.ErrorAs(t, err, &oos)
}

func TestBuildSummary_CountsAndIdempotent(t *testing.T) {
	s, err := New("att-9", "u1", department.Tunnel, 2017, []int64{1, 2, 3, 4}, []int64{2, 4}, t0)
	require.NoError(t, err)

	answerCurrent(t, s, question.OptionA, true)
	answerCurrent(t, s, question.OptionB, false)
	answerCurrent(t, s, question.OptionC, true)
	answerCurrent(t, s, question.OptionD, true)

	first, err := BuildSummary(s)
	require.NoError(t, err)
	second, err := BuildSummary(s)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, 4, first.TotalCount)
	assert.Equal(t, 3, first.CorrectCount)
	assert.InDelta(t, 0.75, first.Accuracy, 1e-9)
	assert.Equal(t, 2, first.ReviewCount)
	assert.Equal(t, 1, first.ReviewCorrect)
	assert.Equal(t, 40*time.Second, first.Duration)
	assert.Equal(t, department.Tunnel, first.Department)

	require.Len(t, first.Breakdown, 4)
	assert.Equal(t, QuestionResult{QuestionID: 2, Chosen: question.OptionB, Correct: false, Review: true, Elapsed: 10 * time.Second}, first.Breakdown[1])
}
