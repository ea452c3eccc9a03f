package spacedrep

import (
	"sort"
	"time"
)

// Scheduler holds one user's review records in memory.
// It is not safe for concurrent use; callers serialize per user.
type Scheduler struct {
	records  map[int64]*Record
	schedule Schedule
}

// NewScheduler creates a scheduler over the given records. A nil schedule
// selects DefaultSchedule.
func NewScheduler(schedule Schedule, records []Record) *Scheduler {
	if schedule == nil {
		schedule = DefaultSchedule()
	}
	s := &Scheduler{
		records:  make(map[int64]*Record, len(records)),
		schedule: schedule,
	}
	for _, r := range records {
		rec := r
		s.records[r.QuestionID] = &rec
	}
	return s
}

// Schedule returns the interval table in use.
func (s *Scheduler) Schedule() Schedule {
	return s.schedule
}

// DueQuestions returns ids whose NextDueAt <= now, most overdue first,
// capped at maxCount.
func (s *Scheduler) DueQuestions(now time.Time, maxCount int) []int64 {
	return s.DueAmong(now, maxCount, nil)
}

// DueAmong is DueQuestions restricted to ids accepted by eligible.
// A nil eligible accepts everything.
func (s *Scheduler) DueAmong(now time.Time, maxCount int, eligible func(id int64) bool) []int64 {
	if maxCount <= 0 {
		return nil
	}

	type dueQuestion struct {
		id      int64
		overdue time.Duration
	}
	var due []dueQuestion

	for id, r := range s.records {
		if !r.IsDue(now) {
			continue
		}
		if eligible != nil && !eligible(id) {
			continue
		}
		due = append(due, dueQuestion{id: id, overdue: r.Overdue(now)})
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].overdue != due[j].overdue {
			return due[i].overdue > due[j].overdue
		}
		return due[i].id < due[j].id
	})

	if len(due) > maxCount {
		due = due[:maxCount]
	}
	ids := make([]int64, len(due))
	for i, d := range due {
		ids[i] = d.id
	}
	return ids
}

// RecordAnswer applies one answer and returns the updated record. The
// record is created at level 0 on a question's first answer.
func (s *Scheduler) RecordAnswer(id int64, correct bool, now time.Time) Record {
	r := s.records[id]
	if r == nil {
		r = &Record{QuestionID: id}
		s.records[id] = r
	}
	*r = s.schedule.Apply(*r, correct, now)
	return *r
}

// Get returns the record for a question.
func (s *Scheduler) Get(id int64) (Record, bool) {
	r := s.records[id]
	if r == nil {
		return Record{}, false
	}
	return *r, true
}

// Records returns all records ordered by question id.
func (s *Scheduler) Records() []Record {
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}

// Graduated returns the ids at MaxLevel that are not currently due.
func (s *Scheduler) Graduated(now time.Time) map[int64]bool {
	out := make(map[int64]bool)
	for id, r := range s.records {
		if r.Graduated() && !r.IsDue(now) {
			out[id] = true
		}
	}
	return out
}

// Len returns the number of tracked questions.
func (s *Scheduler) Len() int {
	return len(s.records)
}

// Reset forgets every record.
func (s *Scheduler) Reset() {
	s.records = make(map[int64]*Record)
}
