// Package exam runs exam attempts: it draws the question pool, records
// answers with their review updates, and summarizes finished attempts.
package exam

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rccmquiz/rccm/internal/department"
	"github.com/rccmquiz/rccm/internal/lock"
	"github.com/rccmquiz/rccm/internal/logger"
	"github.com/rccmquiz/rccm/internal/pool"
	"github.com/rccmquiz/rccm/internal/question"
	"github.com/rccmquiz/rccm/internal/session"
	"github.com/rccmquiz/rccm/internal/spacedrep"
	"github.com/rccmquiz/rccm/internal/store"
)

// Policy is the review policy applied by the engine.
type Policy struct {
	// MaxReviewRatio caps the share of a pool drawn from due reviews.
	MaxReviewRatio float64
	Schedule       spacedrep.Schedule
}

// DefaultPolicy caps reviews at half a session on the default schedule.
func DefaultPolicy() Policy {
	return Policy{MaxReviewRatio: 0.5, Schedule: spacedrep.DefaultSchedule()}
}

// Options wires an Engine.
type Options struct {
	Questions question.Store
	Attempts  store.AttemptRepo
	Reviews   store.ReviewRepo
	Locks     lock.Manager

	// Policy defaults to DefaultPolicy when Schedule is nil.
	Policy Policy

	Log   *logger.Logger
	Now   func() time.Time
	Rand  *rand.Rand
	NewID func() string
}

// Engine is stateless between calls; every attempt lives in the repos.
// Calls for the same user are serialized through Locks.
type Engine struct {
	questions question.Store
	attempts  store.AttemptRepo
	reviews   store.ReviewRepo
	locks     lock.Manager
	policy    Policy
	log       *logger.Logger
	now       func() time.Time
	newID     func() string

	// resolveMu guards the resolver's random source.
	resolveMu sync.Mutex
	resolver  *pool.Resolver
}

// New validates opts and builds an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Questions == nil || opts.Attempts == nil || opts.Reviews == nil {
		return nil, errors.New("exam: questions, attempts and reviews are required")
	}
	if opts.Locks == nil {
		opts.Locks = lock.NewLocal()
	}
	if opts.Policy.Schedule == nil {
		opts.Policy = DefaultPolicy()
	}
	if r := opts.Policy.MaxReviewRatio; r < 0 || r > 1 || math.IsNaN(r) {
		return nil, fmt.Errorf("exam: max review ratio %v outside [0,1]", r)
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Engine{
		questions: opts.Questions,
		attempts:  opts.Attempts,
		reviews:   opts.Reviews,
		locks:     opts.Locks,
		policy:    opts.Policy,
		log:       opts.Log.With("service", "ExamEngine"),
		now:       opts.Now,
		newID:     opts.NewID,
		resolver:  pool.NewResolver(opts.Questions, opts.Rand),
	}, nil
}

// Policy returns the policy in effect.
func (e *Engine) Policy() Policy {
	return e.policy
}

// StartRequest asks for a new attempt.
type StartRequest struct {
	UserID     string
	Tier       question.Tier // optional; must match Department when set
	Department department.Department
	Year       int // 0 means every year; must be 0 for the basic tier
	Count      int

	// ReviewRatio is the share of the pool to fill from due reviews,
	// clamped to the policy cap.
	ReviewRatio float64

	// ExcludeGraduated keeps graduated questions out of the pool until
	// they come due again.
	ExcludeGraduated bool
}

// AnswerResult reports the outcome of one answer.
type AnswerResult struct {
	QuestionID    int64
	Chosen        question.Option
	Correct       bool
	CorrectOption question.Option
	Explanation   string
	Record        spacedrep.Record
	Answered      int
	Total         int
	Completed     bool
}

func lockKey(userID string) string {
	return "exam:" + userID
}

// Start draws a pool and stores a new attempt as the user's active one.
// Any earlier attempt is left untouched under its own id.
func (e *Engine) Start(ctx context.Context, req StartRequest) (*session.State, error) {
	if err := validateStart(&req); err != nil {
		return nil, err
	}

	var st *session.State
	err := lock.With(ctx, e.locks, lockKey(req.UserID), func(ctx context.Context) error {
		now := e.now()

		sched, err := e.scheduler(ctx, req.UserID)
		if err != nil {
			return err
		}

		ratio := min(req.ReviewRatio, e.policy.MaxReviewRatio)
		preq := pool.Request{
			Tier:     req.Tier,
			Category: req.Department.Name(),
			Year:     req.Year,
			Count:    req.Count,
		}
		if req.ExcludeGraduated {
			preq.Exclude = sched.Graduated(now)
		}

		e.resolveMu.Lock()
		sel, err := e.resolver.ResolveMixed(ctx, preq, sched, ratio, now)
		e.resolveMu.Unlock()
		if err != nil {
			return err
		}

		st, err = session.New(e.newID(), req.UserID, req.Department, req.Year, sel.IDs, sel.ReviewIDs, now)
		if err != nil {
			return err
		}
		if err := e.attempts.CreateAttempt(ctx, toAttemptData(st)); err != nil {
			return fmt.Errorf("save attempt: %w", err)
		}

		e.log.Info("exam started",
			"user", req.UserID, "attempt", st.AttemptID, "department", req.Department.Slug(),
			"year", req.Year, "count", req.Count, "review", len(sel.ReviewIDs))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func validateStart(req *StartRequest) error {
	switch {
	case req.UserID == "":
		return &session.InvalidRequestError{Field: "user", Reason: "empty user id"}
	case req.Count <= 0:
		return &session.InvalidRequestError{Field: "count", Reason: fmt.Sprintf("must be positive, got %d", req.Count)}
	case req.ReviewRatio < 0 || req.ReviewRatio > 1 || math.IsNaN(req.ReviewRatio):
		return &session.InvalidRequestError{Field: "review_ratio", Reason: fmt.Sprintf("%v outside [0,1]", req.ReviewRatio)}
	case !req.Department.Valid():
		return &session.InvalidRequestError{Field: "department", Reason: fmt.Sprintf("unknown department %d", int(req.Department))}
	case req.Year < 0:
		return &session.InvalidRequestError{Field: "year", Reason: fmt.Sprintf("negative year %d", req.Year)}
	}

	if req.Tier == "" {
		req.Tier = req.Department.Tier()
	}
	if err := department.CheckTier(req.Department, req.Tier); err != nil {
		return &session.InvalidRequestError{Field: "tier", Reason: err.Error()}
	}
	if req.Tier == question.TierBasic && req.Year != 0 {
		return &session.InvalidRequestError{Field: "year", Reason: "basic questions have no exam year"}
	}
	return nil
}

// SubmitAnswer answers the current question of the user's active attempt.
// The answer, the attempt's progress and the review record are stored in
// one transaction.
func (e *Engine) SubmitAnswer(ctx context.Context, userID string, chosen question.Option, elapsed time.Duration) (*AnswerResult, error) {
	if userID == "" {
		return nil, &session.InvalidRequestError{Field: "user", Reason: "empty user id"}
	}
	if !chosen.Valid() {
		return nil, &session.InvalidRequestError{Field: "option", Reason: fmt.Sprintf("invalid option %q", chosen)}
	}

	var res *AnswerResult
	err := lock.With(ctx, e.locks, lockKey(userID), func(ctx context.Context) error {
		st, err := e.load(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return &session.OutOfSequenceError{Op: "answer", Status: session.StatusNotStarted}
			}
			return err
		}
		qid, err := st.CurrentQuestionID()
		if err != nil {
			return &session.OutOfSequenceError{Op: "answer", Status: st.Status()}
		}
		rec, err := e.question(ctx, st, qid)
		if err != nil {
			return err
		}

		now := e.now()
		correct := rec.IsCorrect(chosen)
		position := st.CurrentIndex
		if err := st.Record(session.Answer{
			QuestionID: qid,
			Chosen:     chosen,
			Correct:    correct,
			Elapsed:    elapsed,
			AnsweredAt: now,
		}); err != nil {
			return err
		}

		var existing []spacedrep.Record
		prev, err := e.reviews.Review(ctx, userID, qid)
		switch {
		case err == nil:
			existing = append(existing, toRecord(*prev))
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("load review %d: %w", qid, err)
		}
		srs := spacedrep.NewScheduler(e.policy.Schedule, existing).RecordAnswer(qid, correct, now)

		err = e.attempts.CommitAnswer(ctx, store.AnswerCommit{
			Answer: store.AnswerData{
				AttemptID:  st.AttemptID,
				UserID:     userID,
				QuestionID: qid,
				Position:   position,
				Tier:       string(st.Tier),
				Department: st.Department.Slug(),
				Year:       rec.Year,
				Chosen:     string(chosen),
				Correct:    correct,
				Review:     st.IsReview(qid),
				Elapsed:    elapsed,
				AnsweredAt: now,
			},
			Review: toReviewData(userID, srs),
		})
		if errors.Is(err, store.ErrConflict) {
			return &session.OutOfSequenceError{Op: "answer", Status: session.StatusInProgress}
		}
		if err != nil {
			return fmt.Errorf("commit answer: %w", err)
		}

		res = &AnswerResult{
			QuestionID:    qid,
			Chosen:        chosen,
			Correct:       correct,
			CorrectOption: rec.Correct,
			Explanation:   rec.Explanation,
			Record:        srs,
			Answered:      st.CurrentIndex,
			Total:         st.Total(),
			Completed:     st.Completed(),
		}
		e.log.Debug("answer recorded",
			"user", userID, "attempt", st.AttemptID, "question", qid,
			"correct", correct, "level", srs.Level, "next_due", srs.NextDueAt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CurrentQuestion returns the next unanswered question.
func (e *Engine) CurrentQuestion(ctx context.Context, userID string) (question.Record, error) {
	st, err := e.load(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return question.Record{}, &session.NoCurrentQuestionError{Status: session.StatusNotStarted}
	}
	if err != nil {
		return question.Record{}, err
	}
	qid, err := st.CurrentQuestionID()
	if err != nil {
		return question.Record{}, err
	}
	return e.question(ctx, st, qid)
}

// question loads an attempt's question and checks that it still belongs to
// the attempt's tier and department. A stored id that now resolves to a
// question elsewhere is a ContaminationError, never served.
func (e *Engine) question(ctx context.Context, st *session.State, qid int64) (question.Record, error) {
	rec, err := e.questions.Get(ctx, qid)
	if err != nil {
		return question.Record{}, fmt.Errorf("load question %d: %w", qid, err)
	}
	if rec.Tier != st.Tier || rec.Category != st.Department.Name() {
		e.log.Error("attempt question no longer matches its department",
			"attempt", st.AttemptID, "question", qid, "category", rec.Category)
		return question.Record{}, &pool.ContaminationError{
			QuestionID:   qid,
			WantTier:     st.Tier,
			GotTier:      rec.Tier,
			WantCategory: st.Department.Name(),
			GotCategory:  rec.Category,
		}
	}
	return rec, nil
}

// Finish summarizes the user's completed attempt. The finish time is
// stamped on the first call; later calls return an equal summary.
func (e *Engine) Finish(ctx context.Context, userID string) (*session.Summary, error) {
	var sum *session.Summary
	err := lock.With(ctx, e.locks, lockKey(userID), func(ctx context.Context) error {
		st, err := e.load(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return &session.OutOfSequenceError{Op: "finish", Status: session.StatusNotStarted}
		}
		if err != nil {
			return err
		}
		if sum, err = session.BuildSummary(st); err != nil {
			return err
		}
		if st.FinishedAt.IsZero() {
			finished, err := e.attempts.FinishAttempt(ctx, st.AttemptID, e.now())
			if err != nil {
				return fmt.Errorf("finish attempt: %w", err)
			}
			e.log.Info("exam finished",
				"user", userID, "attempt", st.AttemptID, "department", st.Department.Slug(),
				"correct", sum.CorrectCount, "total", sum.TotalCount, "finished_at", finished)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// Active returns the user's active attempt, or an error matching
// store.ErrNotFound when none was started.
func (e *Engine) Active(ctx context.Context, userID string) (*session.State, error) {
	return e.load(ctx, userID)
}

// ResetReviews deletes every review record of the user.
func (e *Engine) ResetReviews(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := lock.With(ctx, e.locks, lockKey(userID), func(ctx context.Context) error {
		var err error
		n, err = e.reviews.ResetReviews(ctx, userID)
		if err != nil {
			return err
		}
		e.log.Info("reviews reset", "user", userID, "deleted", n)
		return nil
	})
	return n, err
}

// Scheduler loads the user's review records.
func (e *Engine) Scheduler(ctx context.Context, userID string) (*spacedrep.Scheduler, error) {
	return e.scheduler(ctx, userID)
}

func (e *Engine) scheduler(ctx context.Context, userID string) (*spacedrep.Scheduler, error) {
	data, err := e.reviews.Reviews(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	recs := make([]spacedrep.Record, len(data))
	for i, d := range data {
		recs[i] = toRecord(d)
	}
	return spacedrep.NewScheduler(e.policy.Schedule, recs), nil
}

func (e *Engine) load(ctx context.Context, userID string) (*session.State, error) {
	a, err := e.attempts.ActiveAttempt(ctx, userID)
	if err != nil {
		return nil, err
	}
	return fromAttemptData(a)
}
