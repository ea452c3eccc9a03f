package pool

import (
	"fmt"

	"github.com/rccmquiz/rccm/internal/question"
)

// InsufficientQuestionsError indicates the eligible pool is smaller than the
// requested count. Nothing is backfilled from other categories.
type InsufficientQuestionsError struct {
	Tier      question.Tier
	Category  string
	Year      int
	Requested int
	Available int
	Deficit   int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("insufficient questions for %s/%q (year %d): requested %d, available %d, deficit %d",
		e.Tier, e.Category, e.Year, e.Requested, e.Available, e.Deficit)
}

// ContaminationError indicates the question store returned a record that
// does not belong to the requested tier or category.
type ContaminationError struct {
	QuestionID   int64
	WantTier     question.Tier
	GotTier      question.Tier
	WantCategory string
	GotCategory  string
}

func (e *ContaminationError) Error() string {
	return fmt.Sprintf("question %d does not belong to pool: want %s/%q, got %s/%q",
		e.QuestionID, e.WantTier, e.WantCategory, e.GotTier, e.GotCategory)
}

// InvalidRequestError indicates a malformed resolve request.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid pool request: " + e.Reason
}
