package question

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Tier separates the common basic exam (4-1) from the specialist exam (4-2).
type Tier string

const (
	TierBasic      Tier = "basic"
	TierSpecialist Tier = "specialist"
)

// AllTiers returns the tiers in display order.
func AllTiers() []Tier {
	return []Tier{TierBasic, TierSpecialist}
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierBasic || t == TierSpecialist
}

// ParseTier parses a tier name.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}

// Option is one of the four answer choices.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// AllOptions returns the options in display order.
func AllOptions() []Option {
	return []Option{OptionA, OptionB, OptionC, OptionD}
}

// Valid reports whether o is one of A-D.
func (o Option) Valid() bool {
	return o.Index() >= 0
}

// Index returns the zero-based position of o, or -1.
func (o Option) Index() int {
	switch o {
	case OptionA:
		return 0
	case OptionB:
		return 1
	case OptionC:
		return 2
	case OptionD:
		return 3
	default:
		return -1
	}
}

// OptionAt returns the option at a zero-based position.
func OptionAt(i int) (Option, bool) {
	opts := AllOptions()
	if i < 0 || i >= len(opts) {
		return "", false
	}
	return opts[i], true
}

// ParseOption accepts "a".."d" in either case, surrounding space ignored.
func ParseOption(s string) (Option, error) {
	o := Option(strings.ToUpper(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("invalid option %q: must be A, B, C or D", s)
	}
	return o, nil
}

// Record is a single exam question. Records are immutable once loaded.
type Record struct {
	ID       int64
	Tier     Tier
	Category string

	// Year is the exam year; 0 for basic questions.
	Year int

	Stem        string
	Options     [4]string
	Correct     Option
	Explanation string

	Reference    string
	Difficulty   string
	Keywords     string
	PracticalTip string

	// OriginalID is the id column of the source file before band assignment.
	OriginalID int64
	Source     string
}

// OptionText returns the text of option o.
func (r Record) OptionText(o Option) string {
	i := o.Index()
	if i < 0 {
		return ""
	}
	return r.Options[i]
}

// IsCorrect reports whether chosen is the correct option.
func (r Record) IsCorrect(chosen Option) bool {
	return chosen == r.Correct
}

// Filter selects records from a Store. Tier is mandatory; an empty Category
// matches every category and Year 0 matches every year.
type Filter struct {
	Tier     Tier
	Category string
	Year     int
}

// ErrNotFound is returned by Store.Get for an unknown id.
var ErrNotFound = errors.New("question not found")

// Store is the read-only question corpus.
//
// Find must never return a record whose tier differs from the filter.
// Results carry no ordering guarantee.
type Store interface {
	Find(ctx context.Context, f Filter) ([]Record, error)
	Get(ctx context.Context, id int64) (Record, error)
}
