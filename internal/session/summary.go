package session

import (
	"time"

	"github.com/rccmquiz/rccm/internal/department"
	"github.com/rccmquiz/rccm/internal/question"
)

// QuestionResult is one row of the per-question breakdown.
type QuestionResult struct {
	QuestionID int64
	Chosen     question.Option
	Correct    bool
	Review     bool
	Elapsed    time.Duration
}

// Summary is the result of a completed attempt.
type Summary struct {
	AttemptID  string
	Department department.Department
	Year       int

	TotalCount   int
	CorrectCount int
	Accuracy     float64

	ReviewCount   int
	ReviewCorrect int

	Duration  time.Duration
	Breakdown []QuestionResult
}

// BuildSummary computes the summary from the recorded answers alone, so
// repeated calls on the same completed state return equal values.
func BuildSummary(state *State) (*Summary, error) {
	if st := state.Status(); st != StatusCompleted {
		return nil, &OutOfSequenceError{Op: "finish", Status: st}
	}

	sum := &Summary{
		AttemptID:  state.AttemptID,
		Department: state.Department,
		Year:       state.Year,
		TotalCount: len(state.Answers),
		Breakdown:  make([]QuestionResult, 0, len(state.Answers)),
	}
	for _, a := range state.Answers {
		review := state.IsReview(a.QuestionID)
		if a.Correct {
			sum.CorrectCount++
		}
		if review {
			sum.ReviewCount++
			if a.Correct {
				sum.ReviewCorrect++
			}
		}
		sum.Duration += a.Elapsed
		sum.Breakdown = append(sum.Breakdown, QuestionResult{
			QuestionID: a.QuestionID,
			Chosen:     a.Chosen,
			Correct:    a.Correct,
			Review:     review,
			Elapsed:    a.Elapsed,
		})
	}
	if sum.TotalCount > 0 {
		sum.Accuracy = float64(sum.CorrectCount) / float64(sum.TotalCount)
	}
	return sum, nil
}
