package exam

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rccmquiz/rccm/internal/store"
)

// memRepo implements store.AttemptRepo and store.ReviewRepo in memory.
type memRepo struct {
	mu       sync.Mutex
	attempts map[string]*store.AttemptData
	active   map[string]string
	reviews  map[string]map[int64]store.ReviewData

	// failCommit makes the next CommitAnswer fail after validation.
	failCommit error
}

func newMemRepo() *memRepo {
	return &memRepo{
		attempts: make(map[string]*store.AttemptData),
		active:   make(map[string]string),
		reviews:  make(map[string]map[int64]store.ReviewData),
	}
}

func cloneAttempt(a *store.AttemptData) *store.AttemptData {
	c := *a
	c.QuestionIDs = append([]int64(nil), a.QuestionIDs...)
	c.ReviewIDs = append([]int64(nil), a.ReviewIDs...)
	c.Answers = append([]store.AnswerData(nil), a.Answers...)
	return &c
}

func (m *memRepo) CreateAttempt(_ context.Context, a store.AttemptData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[a.ID] = cloneAttempt(&a)
	m.active[a.UserID] = a.ID
	return nil
}

func (m *memRepo) ActiveAttempt(ctx context.Context, userID string) (*store.AttemptData, error) {
	m.mu.Lock()
	id, ok := m.active[userID]
	m.mu.Unlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return m.Attempt(ctx, id)
}

func (m *memRepo) Attempt(_ context.Context, id string) (*store.AttemptData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneAttempt(a), nil
}

func (m *memRepo) CommitAnswer(_ context.Context, c store.AnswerCommit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[c.Answer.AttemptID]
	if !ok || a.CurrentIndex != c.Answer.Position || !a.FinishedAt.IsZero() {
		return store.ErrConflict
	}
	if m.failCommit != nil {
		err := m.failCommit
		m.failCommit = nil
		return err
	}
	a.CurrentIndex++
	a.Answers = append(a.Answers, c.Answer)
	if m.reviews[c.Review.UserID] == nil {
		m.reviews[c.Review.UserID] = make(map[int64]store.ReviewData)
	}
	m.reviews[c.Review.UserID][c.Review.QuestionID] = c.Review
	return nil
}

func (m *memRepo) FinishAttempt(_ context.Context, id string, at time.Time) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return time.Time{}, store.ErrNotFound
	}
	if a.FinishedAt.IsZero() {
		a.FinishedAt = at
	}
	return a.FinishedAt, nil
}

func (m *memRepo) RecentAttempts(_ context.Context, userID string, limit int) ([]store.AttemptData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.AttemptData
	for _, a := range m.attempts {
		if a.UserID == userID {
			out = append(out, *cloneAttempt(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) Reviews(_ context.Context, userID string) ([]store.ReviewData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.ReviewData
	for _, r := range m.reviews[userID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (m *memRepo) Review(_ context.Context, userID string, questionID int64) (*store.ReviewData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[userID][questionID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (m *memRepo) DueReviews(ctx context.Context, userID string, now time.Time) ([]store.ReviewData, error) {
	all, _ := m.Reviews(ctx, userID)
	var out []store.ReviewData
	for _, r := range all {
		if !now.Before(r.NextDueAt) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) ResetReviews(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.reviews[userID]))
	delete(m.reviews, userID)
	return n, nil
}

func (m *memRepo) seedReview(r store.ReviewData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reviews[r.UserID] == nil {
		m.reviews[r.UserID] = make(map[int64]store.ReviewData)
	}
	m.reviews[r.UserID][r.QuestionID] = r
}
