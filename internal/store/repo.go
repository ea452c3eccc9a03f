package store

import (
	"context"
	"time"
)

// AttemptData is the persisted form of one exam attempt.
type AttemptData struct {
	ID           string
	UserID       string
	Tier         string
	Department   string // department slug
	Year         int
	QuestionIDs  []int64
	ReviewIDs    []int64
	CurrentIndex int
	StartedAt    time.Time
	FinishedAt   time.Time // zero until finished
	Answers      []AnswerData
}

// AnswerData is one answer event.
type AnswerData struct {
	Sequence   int64
	AttemptID  string
	UserID     string
	QuestionID int64
	Position   int
	Tier       string
	Department string
	Year       int
	Chosen     string
	Correct    bool
	Review     bool
	Elapsed    time.Duration
	AnsweredAt time.Time
}

// ReviewData is the persisted SRS record of one question for one user.
type ReviewData struct {
	UserID         string
	QuestionID     int64
	Level          int
	LastReviewedAt time.Time
	NextDueAt      time.Time
	CorrectStreak  int
	IncorrectCount int
}

// AnswerCommit is everything one answer changes. Applied atomically.
type AnswerCommit struct {
	Answer AnswerData
	Review ReviewData
}

// DepartmentAccuracy aggregates answer history for one department.
type DepartmentAccuracy struct {
	Department string
	Answered   int
	Correct    int
}

// Accuracy returns Correct/Answered, 0 when nothing was answered.
func (d DepartmentAccuracy) Accuracy() float64 {
	if d.Answered == 0 {
		return 0
	}
	return float64(d.Correct) / float64(d.Answered)
}

// AttemptRepo persists exam attempts. Each attempt has its own key; the
// user's active slot points at the latest one.
type AttemptRepo interface {
	// CreateAttempt stores a new attempt and makes it the user's active one.
	CreateAttempt(ctx context.Context, a AttemptData) error

	// ActiveAttempt returns the user's active attempt with its answers,
	// or ErrNotFound.
	ActiveAttempt(ctx context.Context, userID string) (*AttemptData, error)

	// Attempt returns an attempt by id with its answers, or ErrNotFound.
	Attempt(ctx context.Context, id string) (*AttemptData, error)

	// CommitAnswer appends the answer, advances the attempt and upserts the
	// review record in one transaction. It fails with ErrConflict when the
	// attempt is no longer at the answer's position.
	CommitAnswer(ctx context.Context, c AnswerCommit) error

	// FinishAttempt stamps the finish time once and returns the stored time.
	FinishAttempt(ctx context.Context, id string, at time.Time) (time.Time, error)

	// RecentAttempts returns the user's attempts, newest first, without answers.
	RecentAttempts(ctx context.Context, userID string, limit int) ([]AttemptData, error)
}

// ReviewRepo reads and resets SRS records.
type ReviewRepo interface {
	Reviews(ctx context.Context, userID string) ([]ReviewData, error)
	Review(ctx context.Context, userID string, questionID int64) (*ReviewData, error)
	DueReviews(ctx context.Context, userID string, now time.Time) ([]ReviewData, error)
	ResetReviews(ctx context.Context, userID string) (int64, error)
}

// HistoryRepo aggregates answer events.
type HistoryRepo interface {
	DepartmentAccuracy(ctx context.Context, userID string) ([]DepartmentAccuracy, error)
	Answers(ctx context.Context, userID string, limit int) ([]AnswerData, error)
}
