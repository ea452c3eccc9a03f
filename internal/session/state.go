package session

import (
	"fmt"
	"time"

	"github.com/rccmquiz/rccm/internal/department"
	"github.com/rccmquiz/rccm/internal/question"
)

// Status is the lifecycle position of an exam attempt.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not started"
	case StatusInProgress:
		return "in progress"
	case StatusCompleted:
		return "completed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Answer is one recorded answer. Correctness is fixed when recorded.
type Answer struct {
	QuestionID int64
	Chosen     question.Option
	Correct    bool
	Elapsed    time.Duration
	AnsweredAt time.Time
}

// State is one exam attempt.
//
// Invariants: QuestionIDs has no duplicates and never changes after New,
// len(Answers) == CurrentIndex, and the attempt is completed exactly when
// CurrentIndex == len(QuestionIDs).
type State struct {
	AttemptID  string
	UserID     string
	Tier       question.Tier
	Department department.Department
	Year       int

	QuestionIDs []int64
	ReviewIDs   []int64

	CurrentIndex int
	Answers      []Answer

	StartedAt  time.Time
	FinishedAt time.Time
}

// New creates an in-progress attempt over ids in presentation order.
func New(attemptID, userID string, dept department.Department, year int, ids, reviewIDs []int64, now time.Time) (*State, error) {
	if len(ids) == 0 {
		return nil, &InvalidRequestError{Field: "questions", Reason: "empty question list"}
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, &InvalidRequestError{Field: "questions", Reason: fmt.Sprintf("duplicate question %d", id)}
		}
		seen[id] = true
	}
	for _, id := range reviewIDs {
		if !seen[id] {
			return nil, &InvalidRequestError{Field: "review", Reason: fmt.Sprintf("review question %d not in pool", id)}
		}
	}

	return &State{
		AttemptID:   attemptID,
		UserID:      userID,
		Tier:        dept.Tier(),
		Department:  dept,
		Year:        year,
		QuestionIDs: append([]int64(nil), ids...),
		ReviewIDs:   append([]int64(nil), reviewIDs...),
		Answers:     make([]Answer, 0, len(ids)),
		StartedAt:   now,
	}, nil
}

// Status returns the lifecycle position. A nil state is not started.
func (s *State) Status() Status {
	switch {
	case s == nil || len(s.QuestionIDs) == 0:
		return StatusNotStarted
	case s.CurrentIndex >= len(s.QuestionIDs):
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// Completed reports whether every question has been answered.
func (s *State) Completed() bool {
	return s.Status() == StatusCompleted
}

// Total returns the number of questions in the attempt.
func (s *State) Total() int {
	return len(s.QuestionIDs)
}

// CurrentQuestionID returns the id of the next question to answer.
func (s *State) CurrentQuestionID() (int64, error) {
	if st := s.Status(); st != StatusInProgress {
		return 0, &NoCurrentQuestionError{Status: st}
	}
	return s.QuestionIDs[s.CurrentIndex], nil
}

// Record appends the answer to the current question and advances.
func (s *State) Record(a Answer) error {
	if st := s.Status(); st != StatusInProgress {
		return &OutOfSequenceError{Op: "answer", Status: st}
	}
	if want := s.QuestionIDs[s.CurrentIndex]; a.QuestionID != want {
		return &InvalidRequestError{
			Field:  "question",
			Reason: fmt.Sprintf("answer for %d but current question is %d", a.QuestionID, want),
		}
	}
	if !a.Chosen.Valid() {
		return &InvalidRequestError{Field: "option", Reason: fmt.Sprintf("invalid option %q", a.Chosen)}
	}
	s.Answers = append(s.Answers, a)
	s.CurrentIndex++
	return nil
}

// AnswerFor returns the recorded answer for a question.
func (s *State) AnswerFor(id int64) (Answer, bool) {
	for _, a := range s.Answers {
		if a.QuestionID == id {
			return a, true
		}
	}
	return Answer{}, false
}

// IsReview reports whether id entered the pool from the review queue.
func (s *State) IsReview(id int64) bool {
	for _, r := range s.ReviewIDs {
		if r == id {
			return true
		}
	}
	return false
}

// CorrectCount returns the number of correct answers so far.
func (s *State) CorrectCount() int {
	n := 0
	for _, a := range s.Answers {
		if a.Correct {
			n++
		}
	}
	return n
}

// Validate checks the structural invariants, for state loaded from storage.
func (s *State) Validate() error {
	if s.CurrentIndex < 0 || s.CurrentIndex > len(s.QuestionIDs) {
		return fmt.Errorf("attempt %s: index %d outside [0,%d]", s.AttemptID, s.CurrentIndex, len(s.QuestionIDs))
	}
	if len(s.Answers) != s.CurrentIndex {
		return fmt.Errorf("attempt %s: %d answers at index %d", s.AttemptID, len(s.Answers), s.CurrentIndex)
	}
	for i, a := range s.Answers {
		if a.QuestionID != s.QuestionIDs[i] {
			return fmt.Errorf("attempt %s: answer %d is for question %d, want %d", s.AttemptID, i, a.QuestionID, s.QuestionIDs[i])
		}
	}
	return nil
}
