package spacedrep

import (
	"fmt"
	"time"
)

// DefaultIntervalDays is the review interval per level, in days.
// Level 0 is where a missed question lands.
var DefaultIntervalDays = []int{1, 3, 7, 21, 60, 180}

// MaxLevel is the graduated level.
const MaxLevel = 5

// Schedule maps a level to its review interval in days.
type Schedule []int

// DefaultSchedule returns a copy of the default interval table.
func DefaultSchedule() Schedule {
	s := make(Schedule, len(DefaultIntervalDays))
	copy(s, DefaultIntervalDays)
	return s
}

// NewSchedule validates an interval table: one positive entry per level,
// non-decreasing.
func NewSchedule(days []int) (Schedule, error) {
	if len(days) != MaxLevel+1 {
		return nil, fmt.Errorf("schedule needs %d intervals, got %d", MaxLevel+1, len(days))
	}
	prev := 0
	for i, d := range days {
		if d <= 0 || d < prev {
			return nil, fmt.Errorf("interval for level %d (%d days) must be positive and non-decreasing", i, d)
		}
		prev = d
	}
	s := make(Schedule, len(days))
	copy(s, days)
	return s, nil
}

// IntervalDays returns the interval for a level, clamped to [0, MaxLevel].
func (s Schedule) IntervalDays(level int) int {
	return s[clampLevel(level)]
}

// Interval returns the interval for a level as a duration.
func (s Schedule) Interval(level int) time.Duration {
	return time.Duration(s.IntervalDays(level)) * 24 * time.Hour
}

// NextDue returns the due time for a question reviewed at now and left at level.
func (s Schedule) NextDue(now time.Time, level int) time.Time {
	return now.AddDate(0, 0, s.IntervalDays(level))
}

// Apply returns r updated for one answer given at now.
//
// Correct: streak+1, level+1 (capped at MaxLevel), due after the new
// level's interval. Incorrect: streak reset, incorrect+1, level-1
// (floored at 0), due after the level 0 interval.
func (s Schedule) Apply(r Record, correct bool, now time.Time) Record {
	r.LastReviewedAt = now
	if correct {
		r.CorrectStreak++
		r.Level = min(r.Level+1, MaxLevel)
		r.NextDueAt = s.NextDue(now, r.Level)
		return r
	}
	r.CorrectStreak = 0
	r.IncorrectCount++
	r.Level = max(r.Level-1, 0)
	r.NextDueAt = s.NextDue(now, 0)
	return r
}

func clampLevel(level int) int {
	return min(max(level, 0), MaxLevel)
}
