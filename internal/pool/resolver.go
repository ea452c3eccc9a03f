package pool

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/rccmquiz/rccm/internal/question"
)

// Request describes the pool to draw.
type Request struct {
	Tier     question.Tier
	Category string // exact match; "" means every category of the tier
	Year     int    // 0 means all years
	Count    int
	Exclude  map[int64]bool
}

// Selection is a resolved mixed pool in presentation order.
type Selection struct {
	IDs       []int64
	ReviewIDs []int64
}

// IsReview reports whether id was drawn from the review queue.
func (s Selection) IsReview(id int64) bool {
	for _, r := range s.ReviewIDs {
		if r == id {
			return true
		}
	}
	return false
}

// DueSource supplies questions due for review. *spacedrep.Scheduler
// satisfies it.
type DueSource interface {
	DueAmong(now time.Time, maxCount int, eligible func(id int64) bool) []int64
}

// Resolver draws question pools from a question store.
type Resolver struct {
	store question.Store
	rng   *rand.Rand
}

// NewResolver creates a resolver. A nil rng gets a randomly seeded source.
func NewResolver(store question.Store, rng *rand.Rand) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Resolver{store: store, rng: rng}
}

// Resolve returns req.Count distinct ids of the requested tier and category
// chosen uniformly at random. The returned order is the presentation order.
func (r *Resolver) Resolve(ctx context.Context, req Request) ([]int64, error) {
	candidates, err := r.candidates(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(candidates) < req.Count {
		return nil, insufficient(req, len(candidates))
	}
	return r.sample(candidates, req.Count), nil
}

// ResolveMixed reserves floor(Count*ratio) slots for due review questions
// from the same pool, fills the rest with fresh picks, and shuffles the
// result. Review slots that cannot be filled go to fresh picks.
func (r *Resolver) ResolveMixed(ctx context.Context, req Request, due DueSource, ratio float64, now time.Time) (Selection, error) {
	if ratio < 0 || ratio > 1 || math.IsNaN(ratio) {
		return Selection{}, &InvalidRequestError{Reason: fmt.Sprintf("review ratio %v outside [0,1]", ratio)}
	}
	candidates, err := r.candidates(ctx, req)
	if err != nil {
		return Selection{}, err
	}
	if len(candidates) < req.Count {
		return Selection{}, insufficient(req, len(candidates))
	}

	reserve := int(math.Floor(float64(req.Count) * ratio))
	var reviewIDs []int64
	if reserve > 0 && due != nil {
		eligible := make(map[int64]bool, len(candidates))
		for _, id := range candidates {
			eligible[id] = true
		}
		reviewIDs = due.DueAmong(now, reserve, func(id int64) bool { return eligible[id] })
	}

	picked := make(map[int64]bool, len(reviewIDs))
	for _, id := range reviewIDs {
		picked[id] = true
	}
	fresh := make([]int64, 0, len(candidates))
	for _, id := range candidates {
		if !picked[id] {
			fresh = append(fresh, id)
		}
	}

	ids := append(append([]int64{}, reviewIDs...), r.sample(fresh, req.Count-len(reviewIDs))...)
	r.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	return Selection{IDs: ids, ReviewIDs: reviewIDs}, nil
}

// candidates returns the deduplicated, sorted, non-excluded ids for req.
func (r *Resolver) candidates(ctx context.Context, req Request) ([]int64, error) {
	if !req.Tier.Valid() {
		return nil, &InvalidRequestError{Reason: fmt.Sprintf("unknown tier %q", req.Tier)}
	}
	if req.Count <= 0 {
		return nil, &InvalidRequestError{Reason: fmt.Sprintf("count must be positive, got %d", req.Count)}
	}

	records, err := r.store.Find(ctx, question.Filter{Tier: req.Tier, Category: req.Category, Year: req.Year})
	if err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}

	seen := make(map[int64]bool, len(records))
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		if rec.Tier != req.Tier || (req.Category != "" && rec.Category != req.Category) {
			return nil, &ContaminationError{
				QuestionID:   rec.ID,
				WantTier:     req.Tier,
				GotTier:      rec.Tier,
				WantCategory: req.Category,
				GotCategory:  rec.Category,
			}
		}
		if seen[rec.ID] || req.Exclude[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		ids = append(ids, rec.ID)
	}

	// Store order is unspecified; sort so a seeded rng gives stable picks.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// sample picks n ids uniformly without replacement (partial Fisher-Yates).
func (r *Resolver) sample(ids []int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	work := append([]int64(nil), ids...)
	for i := 0; i < n; i++ {
		j := i + r.rng.IntN(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:n]
}

func insufficient(req Request, available int) error {
	return &InsufficientQuestionsError{
		Tier:      req.Tier,
		Category:  req.Category,
		Year:      req.Year,
		Requested: req.Count,
		Available: available,
		Deficit:   req.Count - available,
	}
}
