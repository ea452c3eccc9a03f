package spacedrep

import "time"

// Record is the review state of one question for one user.
type Record struct {
	QuestionID     int64     `json:"question_id"`
	Level          int       `json:"level"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	NextDueAt      time.Time `json:"next_due_at"`
	CorrectStreak  int       `json:"correct_streak"`
	IncorrectCount int       `json:"incorrect_count"`
}

// IsDue returns true if the question is due for review (at or past NextDueAt).
func (r *Record) IsDue(now time.Time) bool {
	return !now.Before(r.NextDueAt)
}

// Overdue returns how long past due the question is. Returns 0 if not yet due.
func (r *Record) Overdue(now time.Time) time.Duration {
	if now.Before(r.NextDueAt) {
		return 0
	}
	return now.Sub(r.NextDueAt)
}

// OverdueDays returns Overdue in fractional days.
func (r *Record) OverdueDays(now time.Time) float64 {
	return r.Overdue(now).Hours() / 24.0
}

// Graduated reports whether the question reached the top level. Graduated
// questions still come due again; the interval is just longer.
func (r *Record) Graduated() bool {
	return r.Level >= MaxLevel
}

// ReviewStatus describes a question's review status for display.
type ReviewStatus string

const (
	ReviewNotDue    ReviewStatus = "not_due"
	ReviewDue       ReviewStatus = "due"
	ReviewGraduated ReviewStatus = "graduated"
)

// Status returns the review status for display.
func (r *Record) Status(now time.Time) ReviewStatus {
	if r.IsDue(now) {
		return ReviewDue
	}
	if r.Graduated() {
		return ReviewGraduated
	}
	return ReviewNotDue
}

// DaysUntilDue returns the number of days until the next review.
// Returns 0 if already due.
func (r *Record) DaysUntilDue(now time.Time) int {
	if r.IsDue(now) {
		return 0
	}
	return int(r.NextDueAt.Sub(now).Hours()/24.0) + 1
}
