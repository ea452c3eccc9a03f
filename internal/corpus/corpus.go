// Package corpus holds the question bank in memory and loads it from the
// exam CSV files.
package corpus

import (
	"context"
	"fmt"
	"sort"

	"github.com/rccmquiz/rccm/internal/question"
)

// Corpus is an immutable in-memory question.Store.
type Corpus struct {
	byID   map[int64]question.Record
	byTier map[question.Tier][]question.Record
}

// New indexes records. Ids must be unique and sit in their tier's band.
func New(records []question.Record) (*Corpus, error) {
	c := &Corpus{
		byID:   make(map[int64]question.Record, len(records)),
		byTier: make(map[question.Tier][]question.Record),
	}
	for _, r := range records {
		if !r.Tier.Valid() {
			return nil, fmt.Errorf("question %d: unknown tier %q", r.ID, r.Tier)
		}
		band, _ := question.BandFor(r.Tier)
		if !band.Contains(r.ID) {
			return nil, fmt.Errorf("question %d: outside %s id band [%d,%d]", r.ID, r.Tier, band.Min, band.Max)
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("question %d: duplicate id", r.ID)
		}
		c.byID[r.ID] = r
		c.byTier[r.Tier] = append(c.byTier[r.Tier], r)
	}
	return c, nil
}

// Find implements question.Store.
func (c *Corpus) Find(_ context.Context, f question.Filter) ([]question.Record, error) {
	var out []question.Record
	for _, r := range c.byTier[f.Tier] {
		if f.Category != "" && r.Category != f.Category {
			continue
		}
		if f.Year != 0 && r.Year != f.Year {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Get implements question.Store.
func (c *Corpus) Get(_ context.Context, id int64) (question.Record, error) {
	r, ok := c.byID[id]
	if !ok {
		return question.Record{}, fmt.Errorf("%w: %d", question.ErrNotFound, id)
	}
	return r, nil
}

// Len returns the number of questions.
func (c *Corpus) Len() int {
	return len(c.byID)
}

// Group counts the questions sharing a tier, category and year.
type Group struct {
	Tier     question.Tier
	Category string
	Year     int
	Count    int
}

// Groups returns question counts per tier, category and year, ordered by
// tier, category, then year.
func (c *Corpus) Groups() []Group {
	type key struct {
		tier     question.Tier
		category string
		year     int
	}
	counts := make(map[key]int)
	for _, r := range c.byID {
		counts[key{r.Tier, r.Category, r.Year}]++
	}

	out := make([]Group, 0, len(counts))
	for k, n := range counts {
		out = append(out, Group{Tier: k.tier, Category: k.category, Year: k.year, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Tier != b.Tier {
			return a.Tier < b.Tier
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Year < b.Year
	})
	return out
}

// Years returns the distinct exam years present for a category.
func (c *Corpus) Years(category string) []int {
	seen := make(map[int]bool)
	for _, r := range c.byTier[question.TierSpecialist] {
		if r.Category == category && r.Year != 0 {
			seen[r.Year] = true
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
