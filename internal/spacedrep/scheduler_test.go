package spacedrep

import (
	"testing"
	"time"
)

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestRecordAnswer_FirstIncorrectCreatesRecord(t *testing.T) {
	sched := NewScheduler(nil, nil)

	rec := sched.RecordAnswer(2000001, false, base)

	if rec.Level != 0 {
		t.Errorf("Level = %d, want 0", rec.Level)
	}
	if rec.IncorrectCount != 1 {
		t.Errorf("IncorrectCount = %d, want 1", rec.IncorrectCount)
	}
	if want := base.AddDate(0, 0, 1); !rec.NextDueAt.Equal(want) {
		t.Errorf("NextDueAt = %v, want %v", rec.NextDueAt, want)
	}
	if _, ok := sched.Get(2000001); !ok {
		t.Error("expected record to be tracked")
	}
}

func TestRecordAnswer_IncorrectDropsOneLevel(t *testing.T) {
	sched := NewScheduler(nil, []Record{{QuestionID: 1, Level: 3, CorrectStreak: 3, NextDueAt: base}})

	rec := sched.RecordAnswer(1, false, base)

	if rec.Level != 2 {
		t.Errorf("Level = %d, want 2", rec.Level)
	}
	if want := base.AddDate(0, 0, 1); !rec.NextDueAt.Equal(want) {
		t.Errorf("NextDueAt = %v, want %v (level 0 interval)", rec.NextDueAt, want)
	}
	if rec.CorrectStreak != 0 {
		t.Errorf("CorrectStreak = %d, want 0", rec.CorrectStreak)
	}
}

func TestRecordAnswer_FiveCorrectReachLevelFive(t *testing.T) {
	sched := NewScheduler(nil, []Record{{QuestionID: 9, Level: 0, NextDueAt: base}})

	now := base
	var rec Record
	for i := 0; i < 5; i++ {
		rec = sched.RecordAnswer(9, true, now)
		if rec.Level != i+1 {
			t.Fatalf("after %d correct: Level = %d, want %d", i+1, rec.Level, i+1)
		}
		now = rec.NextDueAt
	}

	if !rec.Graduated() {
		t.Error("expected graduated after five consecutive correct answers")
	}
	if rec.CorrectStreak != 5 {
		t.Errorf("CorrectStreak = %d, want 5", rec.CorrectStreak)
	}
}

func TestRecordAnswer_IntervalsFollowLevel(t *testing.T) {
	sched := NewScheduler(nil, nil)

	now := base
	expected := []int{3, 7, 21, 60, 180, 180}
	for i, days := range expected {
		rec := sched.RecordAnswer(5, true, now)
		if want := now.AddDate(0, 0, days); !rec.NextDueAt.Equal(want) {
			t.Errorf("answer %d: NextDueAt = %v, want %v", i+1, rec.NextDueAt, want)
		}
		now = rec.NextDueAt
	}
}

func TestGraduated_ReentersWhenDueAgain(t *testing.T) {
	sched := NewScheduler(nil, []Record{{QuestionID: 3, Level: MaxLevel, NextDueAt: base.AddDate(0, 0, 180)}})

	if ids := sched.DueQuestions(base, 10); len(ids) != 0 {
		t.Errorf("expected no due questions before interval elapses, got %v", ids)
	}
	if !sched.Graduated(base)[3] {
		t.Error("expected question 3 listed as graduated")
	}

	later := base.AddDate(0, 0, 181)
	ids := sched.DueQuestions(later, 10)
	if len(ids) != 1 || ids[0] != 3 {
		t.Errorf("DueQuestions = %v, want [3]", ids)
	}
	if sched.Graduated(later)[3] {
		t.Error("a due question is not reported as graduated")
	}
}

func TestDueQuestions_MostOverdueFirstAndCapped(t *testing.T) {
	sched := NewScheduler(nil, []Record{
		{QuestionID: 10, NextDueAt: base.AddDate(0, 0, -1)},
		{QuestionID: 11, NextDueAt: base.AddDate(0, 0, -5)},
		{QuestionID: 12, NextDueAt: base.AddDate(0, 0, 2)},
		{QuestionID: 13, NextDueAt: base.AddDate(0, 0, -3)},
		{QuestionID: 14, NextDueAt: base.AddDate(0, 0, -3)},
	})

	got := sched.DueQuestions(base, 10)
	want := []int64{11, 13, 14, 10}
	if len(got) != len(want) {
		t.Fatalf("DueQuestions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DueQuestions[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	capped := sched.DueQuestions(base, 2)
	if len(capped) != 2 || capped[0] != 11 || capped[1] != 13 {
		t.Errorf("capped DueQuestions = %v, want [11 13]", capped)
	}

	if none := sched.DueQuestions(base, 0); none != nil {
		t.Errorf("DueQuestions(0) = %v, want nil", none)
	}
}

func TestDueAmong_Filters(t *testing.T) {
	sched := NewScheduler(nil, []Record{
		{QuestionID: 1, NextDueAt: base.AddDate(0, 0, -1)},
		{QuestionID: 2, NextDueAt: base.AddDate(0, 0, -2)},
		{QuestionID: 3, NextDueAt: base.AddDate(0, 0, -3)},
	})

	got := sched.DueAmong(base, 5, func(id int64) bool { return id != 3 })
	if len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Errorf("DueAmong = %v, want [2 1]", got)
	}
}

func TestRecordsAndReset(t *testing.T) {
	sched := NewScheduler(nil, nil)
	sched.RecordAnswer(30, true, base)
	sched.RecordAnswer(10, false, base)
	sched.RecordAnswer(20, true, base)

	recs := sched.Records()
	if len(recs) != 3 || recs[0].QuestionID != 10 || recs[2].QuestionID != 30 {
		t.Errorf("Records() not ordered by id: %+v", recs)
	}

	sched.Reset()
	if sched.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", sched.Len())
	}
}

func TestNewScheduler_CopiesInput(t *testing.T) {
	in := []Record{{QuestionID: 1, Level: 2}}
	sched := NewScheduler(nil, in)
	sched.RecordAnswer(1, true, base)
	if in[0].Level != 2 {
		t.Error("scheduler must not mutate caller's records")
	}
}
