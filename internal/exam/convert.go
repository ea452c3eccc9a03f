package exam

import (
	"fmt"

	"github.com/rccmquiz/rccm/internal/department"
	"github.com/rccmquiz/rccm/internal/question"
	"github.com/rccmquiz/rccm/internal/session"
	"github.com/rccmquiz/rccm/internal/spacedrep"
	"github.com/rccmquiz/rccm/internal/store"
)

func toAttemptData(st *session.State) store.AttemptData {
	return store.AttemptData{
		ID:           st.AttemptID,
		UserID:       st.UserID,
		Tier:         string(st.Tier),
		Department:   st.Department.Slug(),
		Year:         st.Year,
		QuestionIDs:  st.QuestionIDs,
		ReviewIDs:    st.ReviewIDs,
		CurrentIndex: st.CurrentIndex,
		StartedAt:    st.StartedAt,
		FinishedAt:   st.FinishedAt,
	}
}

func fromAttemptData(a *store.AttemptData) (*session.State, error) {
	dept, err := department.Parse(a.Department)
	if err != nil {
		return nil, fmt.Errorf("attempt %s: %w", a.ID, err)
	}
	st := &session.State{
		AttemptID:    a.ID,
		UserID:       a.UserID,
		Tier:         question.Tier(a.Tier),
		Department:   dept,
		Year:         a.Year,
		QuestionIDs:  a.QuestionIDs,
		ReviewIDs:    a.ReviewIDs,
		CurrentIndex: a.CurrentIndex,
		Answers:      make([]session.Answer, 0, len(a.Answers)),
		StartedAt:    a.StartedAt,
		FinishedAt:   a.FinishedAt,
	}
	for _, ans := range a.Answers {
		st.Answers = append(st.Answers, session.Answer{
			QuestionID: ans.QuestionID,
			Chosen:     question.Option(ans.Chosen),
			Correct:    ans.Correct,
			Elapsed:    ans.Elapsed,
			AnsweredAt: ans.AnsweredAt,
		})
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

func toRecord(d store.ReviewData) spacedrep.Record {
	return spacedrep.Record{
		QuestionID:     d.QuestionID,
		Level:          d.Level,
		LastReviewedAt: d.LastReviewedAt,
		NextDueAt:      d.NextDueAt,
		CorrectStreak:  d.CorrectStreak,
		IncorrectCount: d.IncorrectCount,
	}
}

func toReviewData(userID string, r spacedrep.Record) store.ReviewData {
	return store.ReviewData{
		UserID:         userID,
		QuestionID:     r.QuestionID,
		Level:          r.Level,
		LastReviewedAt: r.LastReviewedAt,
		NextDueAt:      r.NextDueAt,
		CorrectStreak:  r.CorrectStreak,
		IncorrectCount: r.IncorrectCount,
	}
}
