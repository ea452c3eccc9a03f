package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rccmquiz/rccm/internal/department"
	"github.com/rccmquiz/rccm/internal/question"
)

var t0 = time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)

func newTestState(t *testing.T, ids ...int64) *State {
	t.Helper()
	s, err := New("att-1", "u1", department.RiverSabo, 2019, ids, nil, t0)
	require.NoError(t, err)
	return s
}

func answerCurrent(t *testing.T, s *State, chosen question.Option, correct bool) {
	t.Helper()
	id, err := s.CurrentQuestionID()
	require.NoError(t, err)
	require.NoError(t, s.Record(Answer{QuestionID: id, Chosen: chosen, Correct: correct, Elapsed: 10 * time.Second}))
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		ids    []int64
		review []int64
	}{
		{"empty", nil, nil},
		{"duplicate", []int64{1, 2, 1}, nil},
		{"review not in pool", []int64{1, 2}, []int64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("a", "u", department.Road, 0, tt.ids, tt.review, t0)
			var inv *InvalidRequestError
			assert.ErrorAs(t, err, &inv)
		})
	}
}

func TestNew_CopiesInputAndSetsTier(t *testing.T) {
	ids := []int64{2000001, 2000002}
	s, err := New("a", "u", department.Road, 2018, ids, []int64{2000002}, t0)
	require.NoError(t, err)
	ids[0] = 99

	assert.Equal(t, int64(2000001), s.QuestionIDs[0])
	assert.Equal(t, question.TierSpecialist, s.Tier)
	assert.True(t, s.IsReview(2000002))
	assert.False(t, s.IsReview(2000001))
	assert.Equal(t, StatusInProgress, s.Status())
}

func TestStatus_NilIsNotStarted(t *testing.T) {
	var s *State
	assert.Equal(t, StatusNotStarted, s.Status())

	_, err := s.CurrentQuestionID()
	var none *NoCurrentQuestionError
	require.ErrorAs(t, err, &none)
	assert.Equal(t, StatusNotStarted, none.Status)
}

func TestRecord_CountAnswersComplete(t *testing.T) {
	ids := []int64{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	s := newTestState(t, ids...)

	for i := range ids {
		assert.Equal(t, i, s.CurrentIndex)
		assert.Len(t, s.Answers, s.CurrentIndex)
		assert.False(t, s.Completed())
		answerCurrent(t, s, question.OptionB, i%2 == 0)
	}

	assert.True(t, s.Completed())
	assert.Equal(t, len(ids), s.CurrentIndex)
	assert.Equal(t, 5, s.CorrectCount())
	require.NoError(t, s.Validate())

	err := s.Record(Answer{QuestionID: 20, Chosen: question.OptionA})
	var oos *OutOfSequenceError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, StatusCompleted, oos.Status)
	assert.Len(t, s.Answers, len(ids))

	_, err = s.CurrentQuestionID()
	var none *NoCurrentQuestionError
	assert.ErrorAs(t, err, &none)
}

func TestRecord_WrongQuestionRejected(t *testing.T) {
	s := newTestState(t, 1, 2, 3)

	err := s.Record(Answer{QuestionID: 2, Chosen: question.OptionA})
	var inv *InvalidRequestError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, 0, s.CurrentIndex)
}

func TestRecord_InvalidOptionRejected(t *testing.T) {
	s := newTestState(t, 1, 2, 3)

	err := s.Record(Answer{QuestionID: 1, Chosen: "E"})
	var inv *InvalidRequestError
	require.ErrorAs(t, err, &inv)
	assert.Empty(t, s.Answers)
}

func TestAnswerFor(t *testing.T) {
	s := newTestState(t, 5, 6)
	answerCurrent(t, s, question.OptionC, true)

	a, ok := s.AnswerFor(5)
	require.True(t, ok)
	assert.Equal(t, question.OptionC, a.Chosen)

	_, ok = s.AnswerFor(6)
	assert.False(t, ok)
}

func TestValidate_DetectsCorruption(t *testing.T) {
	s := newTestState(t, 1, 2)
	answerCurrent(t, s, question.OptionA, true)

	s.CurrentIndex = 2
	assert.Error(t, s.Validate())

	s.CurrentIndex = 1
	s.Answers[0].QuestionID = 2
	assert.Error(t, s.Validate())

	s.CurrentIndex = 5
	assert.Error(t, s.Validate())
}
