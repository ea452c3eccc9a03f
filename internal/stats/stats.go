// Package stats aggregates a user's answer history and review records per
// department.
package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rccmquiz/rccm/internal/department"
	"github.com/rccmquiz/rccm/internal/question"
	"github.com/rccmquiz/rccm/internal/spacedrep"
	"github.com/rccmquiz/rccm/internal/store"
)

// Levels counts review records per SRS level, index = level.
type Levels [spacedrep.MaxLevel + 1]int

// Total returns the number of records counted.
func (l Levels) Total() int {
	n := 0
	for _, c := range l {
		n += c
	}
	return n
}

// DepartmentStats is one row of the report. Department is Unknown for
// records whose category is not in the catalog; Name then holds the raw
// category.
type DepartmentStats struct {
	Department department.Department
	Name       string

	Answered int
	Correct  int

	Reviews   int
	Due       int
	Graduated int
	Levels    Levels
}

// Accuracy returns Correct/Answered, 0 when nothing was answered.
func (d DepartmentStats) Accuracy() float64 {
	if d.Answered == 0 {
		return 0
	}
	return float64(d.Correct) / float64(d.Answered)
}

// Report is the per-department breakdown for one user.
type Report struct {
	UserID      string
	GeneratedAt time.Time
	Departments []DepartmentStats
	Totals      DepartmentStats
}

// Service builds reports from the stores.
type Service struct {
	questions question.Store
	history   store.HistoryRepo
	reviews   store.ReviewRepo
	now       func() time.Time
}

// NewService creates a Service. A nil now uses time.Now.
func NewService(questions question.Store, history store.HistoryRepo, reviews store.ReviewRepo, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{questions: questions, history: history, reviews: reviews, now: now}
}

// Report aggregates answer accuracy and review levels per department.
// Departments with neither answers nor reviews are omitted.
func (s *Service) Report(ctx context.Context, userID string) (*Report, error) {
	now := s.now()
	rows := newRowSet()

	acc, err := s.history.DepartmentAccuracy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("department accuracy: %w", err)
	}
	for _, a := range acc {
		row := rows.bySlug(a.Department)
		row.Answered += a.Answered
		row.Correct += a.Correct
	}

	reviews, err := s.reviews.Reviews(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	for _, r := range reviews {
		row, err := s.rowFor(ctx, rows, r.QuestionID)
		if err != nil {
			return nil, err
		}
		if row == nil {
			continue
		}
		rec := toRecord(r)
		row.Reviews++
		row.Levels[min(max(rec.Level, 0), spacedrep.MaxLevel)]++
		switch rec.Status(now) {
		case spacedrep.ReviewDue:
			row.Due++
		case spacedrep.ReviewGraduated:
			row.Graduated++
		}
	}

	rep := &Report{UserID: userID, GeneratedAt: now, Departments: rows.sorted()}
	for _, d := range rep.Departments {
		rep.Totals.Answered += d.Answered
		rep.Totals.Correct += d.Correct
		rep.Totals.Reviews += d.Reviews
		rep.Totals.Due += d.Due
		rep.Totals.Graduated += d.Graduated
		for i, c := range d.Levels {
			rep.Totals.Levels[i] += c
		}
	}
	return rep, nil
}

// DueCount is the number of due review questions in one department.
type DueCount struct {
	Department department.Department
	Name       string
	Due        int
	// MostOverdue is how long the oldest due question has waited.
	MostOverdue time.Duration
}

// Due counts due review questions per department, most due first.
func (s *Service) Due(ctx context.Context, userID string) ([]DueCount, error) {
	now := s.now()
	due, err := s.reviews.DueReviews(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("load due reviews: %w", err)
	}

	rows := newRowSet()
	overdue := make(map[string]time.Duration)
	for _, r := range due {
		row, err := s.rowFor(ctx, rows, r.QuestionID)
		if err != nil {
			return nil, err
		}
		if row == nil {
			continue
		}
		row.Due++
		if d := now.Sub(r.NextDueAt); d > overdue[row.Name] {
			overdue[row.Name] = d
		}
	}

	var out []DueCount
	for _, row := range rows.sorted() {
		out = append(out, DueCount{
			Department:  row.Department,
			Name:        row.Name,
			Due:         row.Due,
			MostOverdue: overdue[row.Name],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Due > out[j].Due })
	return out, nil
}

// rowFor maps a question to its department row. Questions no longer in the
// corpus are skipped.
func (s *Service) rowFor(ctx context.Context, rows *rowSet, id int64) (*DepartmentStats, error) {
	rec, err := s.questions.Get(ctx, id)
	if errors.Is(err, question.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load question %d: %w", id, err)
	}
	if rec.Tier == question.TierBasic {
		return rows.get(department.Basic, department.Basic.Name()), nil
	}
	if d, ok := department.FromName(rec.Category); ok {
		return rows.get(d, d.Name()), nil
	}
	return rows.get(department.Unknown, rec.Category), nil
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

// rowSet keys rows by display name so raw categories get their own row.
type rowSet struct {
	rows map[string]*DepartmentStats
}

func newRowSet() *rowSet {
	return &rowSet{rows: make(map[string]*DepartmentStats)}
}

func (s *rowSet) get(d department.Department, name string) *DepartmentStats {
	row, ok := s.rows[name]
	if !ok {
		row = &DepartmentStats{Department: d, Name: name}
		s.rows[name] = row
	}
	return row
}

func (s *rowSet) bySlug(slug string) *DepartmentStats {
	d, err := department.Parse(slug)
	if err != nil {
		return s.get(department.Unknown, slug)
	}
	return s.get(d, d.Name())
}

// sorted returns catalog departments in catalog order, then unknown
// categories by name.
func (s *rowSet) sorted() []DepartmentStats {
	out := make([]DepartmentStats, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Department == department.Unknown || b.Department == department.Unknown {
			if a.Department != b.Department {
				return b.Department == department.Unknown
			}
			return a.Name < b.Name
		}
		return a.Department < b.Department
	})
	return out
}
