package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rccmquiz/rccm/internal/corpus"
	"github.com/rccmquiz/rccm/internal/department"
	"github.com/rccmquiz/rccm/internal/question"
	"github.com/rccmquiz/rccm/internal/store"
)

var testNow = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

type fakeHistory struct {
	acc []store.DepartmentAccuracy
	err error
}

func (f *fakeHistory) DepartmentAccuracy(context.Context, string) ([]store.DepartmentAccuracy, error) {
	return f.acc, f.err
}

func (f *fakeHistory) Answers(context.Context, string, int) ([]store.AnswerData, error) {
	return nil, nil
}

type fakeReviews struct {
	data []store.ReviewData
}

func (f *fakeReviews) Reviews(context.Context, string) ([]store.ReviewData, error) {
	return f.data, nil
}

func (f *fakeReviews) Review(_ context.Context, _ string, id int64) (*store.ReviewData, error) {
	for _, r := range f.data {
		if r.QuestionID == id {
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeReviews) DueReviews(_ context.Context, _ string, now time.Time) ([]store.ReviewData, error) {
	var out []store.ReviewData
	for _, r := range f.data {
		if !now.Before(r.NextDueAt) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviews) ResetReviews(context.Context, string) (int64, error) {
	n := int64(len(f.data))
	f.data = nil
	return n, nil
}

func testCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	c, err := corpus.New([]question.Record{
		{ID: 1_000_000, Tier: question.TierBasic, Category: "共通"},
		{ID: 2_000_000, Tier: question.TierSpecialist, Category: "道路", Year: 2019},
		{ID: 2_000_001, Tier: question.TierSpecialist, Category: "道路", Year: 2019},
		{ID: 2_000_002, Tier: question.TierSpecialist, Category: "トンネル", Year: 2019},
		{ID: 2_000_003, Tier: question.TierSpecialist, Category: "砂防", Year: 2018},
	})
	require.NoError(t, err)
	return c
}

func review(id int64, level int, due time.Time) store.ReviewData {
	return store.ReviewData{UserID: "u1", QuestionID: id, Level: level, NextDueAt: due}
}

func TestReport(t *testing.T) {
	hist := &fakeHistory{acc: []store.DepartmentAccuracy{
		{Department: "road", Answered: 10, Correct: 7},
		{Department: "basic", Answered: 4, Correct: 1},
	}}
	revs := &fakeReviews{data: []store.ReviewData{
		review(1_000_000, 0, testNow.Add(-time.Hour)),
		review(2_000_000, 5, testNow.AddDate(0, 0, 90)),
		review(2_000_001, 2, testNow.Add(-time.Minute)),
		review(2_000_002, 1, testNow.AddDate(0, 0, 2)),
		review(2_000_003, 3, testNow.AddDate(0, 0, 5)),
		review(2_999_999, 1, testNow), // no longer in the corpus
	}}
	svc := NewService(testCorpus(t), hist, revs, func() time.Time { return testNow })

	rep, err := svc.Report(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, rep.Departments, 4)

	basic := rep.Departments[0]
	assert.Equal(t, department.Basic, basic.Department)
	assert.Equal(t, 4, basic.Answered)
	assert.InDelta(t, 0.25, basic.Accuracy(), 1e-9)
	assert.Equal(t, 1, basic.Due)

	road := rep.Departments[1]
	assert.Equal(t, department.Road, road.Department)
	assert.Equal(t, 10, road.Answered)
	assert.InDelta(t, 0.7, road.Accuracy(), 1e-9)
	assert.Equal(t, 2, road.Reviews)
	assert.Equal(t, 1, road.Due)
	assert.Equal(t, 1, road.Graduated)
	assert.Equal(t, 1, road.Levels[5])
	assert.Equal(t, 1, road.Levels[2])

	tunnel := rep.Departments[2]
	assert.Equal(t, department.Tunnel, tunnel.Department)
	assert.Zero(t, tunnel.Answered)
	assert.Zero(t, tunnel.Accuracy())

	raw := rep.Departments[3]
	assert.Equal(t, department.Unknown, raw.Department)
	assert.Equal(t, "砂防", raw.Name)

	assert.Equal(t, 14, rep.Totals.Answered)
	assert.Equal(t, 8, rep.Totals.Correct)
	assert.Equal(t, 5, rep.Totals.Reviews)
	assert.Equal(t, 5, rep.Totals.Levels.Total())
	assert.Equal(t, 2, rep.Totals.Due)
}

func TestReport_HistoryError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(testCorpus(t), &fakeHistory{err: boom}, &fakeReviews{}, nil)
	_, err := svc.Report(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
}

func TestDue(t *testing.T) {
	revs := &fakeReviews{data: []store.ReviewData{
		review(2_000_000, 1, testNow.Add(-2*time.Hour)),
		review(2_000_001, 1, testNow.Add(-5*time.Hour)),
		review(2_000_002, 1, testNow.Add(-time.Hour)),
		review(1_000_000, 1, testNow.Add(time.Hour)), // not due
	}}
	svc := NewService(testCorpus(t), &fakeHistory{}, revs, func() time.Time { return testNow })

	due, err := svc.Due(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, department.Road, due[0].Department)
	assert.Equal(t, 2, due[0].Due)
	assert.Equal(t, 5*time.Hour, due[0].MostOverdue)
	assert.Equal(t, department.Tunnel, due[1].Department)
	assert.Equal(t, 1, due[1].Due)
}

func TestDue_Empty(t *testing.T) {
	svc := NewService(testCorpus(t), &fakeHistory{}, &fakeReviews{}, func() time.Time { return testNow })
	due, err := svc.Due(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, due)
}
