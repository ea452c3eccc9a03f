package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var attemptColumns = []string{
	"id", "user_id", "tier", "department", "year",
	"question_ids", "review_ids", "current_index", "started_at", "finished_at",
}

var answerColumns = []string{
	"sequence", "attempt_id", "user_id", "question_id", "position",
	"tier", "department", "year", "chosen", "correct", "review",
	"elapsed_ms", "answered_at",
}

// attemptRepo implements AttemptRepo over SQL builders.
type attemptRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *attemptRepo) CreateAttempt(ctx context.Context, a AttemptData) error {
	qids, err := encodeIDs(a.QuestionIDs)
	if err != nil {
		return err
	}
	rids, err := encodeIDs(a.ReviewIDs)
	if err != nil {
		return err
	}

	b := builder()
	return withTx(ctx, r.drv, func(tx dialect.Tx) error {
		q, args := b.Insert(tableAttempts).
			Columns(attemptColumns...).
			Values(a.ID, a.UserID, a.Tier, a.Department, a.Year,
				qids, rids, a.CurrentIndex, formatTime(a.StartedAt), formatTime(a.FinishedAt)).
			Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}

		q, args = b.Insert(tableActive).
			Columns("user_id", "attempt_id", "updated_at").
			Values(a.UserID, a.ID, formatTime(a.StartedAt)).
			OnConflict(entsql.ConflictColumns("user_id"), entsql.ResolveWithNewValues()).
			Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("set active attempt: %w", err)
		}
		return nil
	})
}

func (r *attemptRepo) ActiveAttempt(ctx context.Context, userID string) (*AttemptData, error) {
	b := builder()
	q, args := b.Select("attempt_id").
		From(b.Table(tableActive)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var id string
	found, err := queryRow(ctx, r.drv, q, args, &id)
	if err != nil {
		return nil, fmt.Errorf("query active attempt: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return r.Attempt(ctx, id)
}

func (r *attemptRepo) Attempt(ctx context.Context, id string) (*AttemptData, error) {
	b := builder()
	q, args := b.Select(attemptColumns...).
		From(b.Table(tableAttempts)).
		Where(entsql.EQ("id", id)).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query attempt: %w", err)
	}
	attempts, err := scanAttempts(&rows)
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return nil, ErrNotFound
	}
	a := attempts[0]

	answers, err := r.answers(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Answers = answers
	return &a, nil
}

func (r *attemptRepo) answers(ctx context.Context, attemptID string) ([]AnswerData, error) {
	b := builder()
	q, args := b.Select(answerColumns...).
		From(b.Table(tableAnswers)).
		Where(entsql.EQ("attempt_id", attemptID)).
		OrderBy("position").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	return scanAnswers(&rows)
}

func (r *attemptRepo) CommitAnswer(ctx context.Context, c AnswerCommit) error {
	a := c.Answer
	b := builder()
	return withTx(ctx, r.drv, func(tx dialect.Tx) error {
		q, args := b.Update(tableAttempts).
			Set("current_index", a.Position+1).
			Where(entsql.And(
				entsql.EQ("id", a.AttemptID),
				entsql.EQ("current_index", a.Position),
				entsql.EQ("finished_at", ""),
			)).
			Query()
		var res sql.Result
		if err := tx.Exec(ctx, q, args, &res); err != nil {
			return fmt.Errorf("advance attempt: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("advance attempt: %w", err)
		}
		if n != 1 {
			return ErrConflict
		}

		seq, err := r.seq.Next(ctx, tx)
		if err != nil {
			return err
		}

		q, args = b.Insert(tableAnswers).
			Columns(answerColumns...).
			Values(seq, a.AttemptID, a.UserID, a.QuestionID, a.Position,
				a.Tier, a.Department, a.Year, a.Chosen, boolInt(a.Correct), boolInt(a.Review),
				a.Elapsed.Milliseconds(), formatTime(a.AnsweredAt)).
			Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}

		if err := upsertReview(ctx, tx, c.Review); err != nil {
			return err
		}
		return nil
	})
}

func (r *attemptRepo) FinishAttempt(ctx context.Context, id string, at time.Time) (time.Time, error) {
	b := builder()
	var finished time.Time
	err := withTx(ctx, r.drv, func(tx dialect.Tx) error {
		q, args := b.Update(tableAttempts).
			Set("finished_at", formatTime(at)).
			Where(entsql.And(entsql.EQ("id", id), entsql.EQ("finished_at", ""))).
			Query()
		if err := tx.Exec(ctx, q, args, nil); err != nil {
			return fmt.Errorf("finish attempt: %w", err)
		}

		q, args = b.Select("finished_at").
			From(b.Table(tableAttempts)).
			Where(entsql.EQ("id", id)).
			Query()
		var raw string
		found, err := queryRow(ctx, tx, q, args, &raw)
		if err != nil {
			return fmt.Errorf("read finish time: %w", err)
		}
		if !found {
			return ErrNotFound
		}
		finished, err = parseTime(raw)
		return err
	})
	if err != nil {
		return time.Time{}, err
	}
	return finished, nil
}

func (r *attemptRepo) RecentAttempts(ctx context.Context, userID string, limit int) ([]AttemptData, error) {
	b := builder()
	sel := b.Select(attemptColumns...).
		From(b.Table(tableAttempts)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("started_at"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	q, args := sel.Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return scanAttempts(&rows)
}

// queryRow scans the first row of a query into dest. found is false when
// the query returned no rows.
func queryRow(ctx context.Context, eq dialect.ExecQuerier, q string, args []any, dest ...any) (found bool, err error) {
	var rows entsql.Rows
	if err := eq.Query(ctx, q, args, &rows); err != nil {
		return false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return false, rows.Err()
	}
	if err := rows.Scan(dest...); err != nil {
		return false, err
	}
	return true, nil
}

func scanAttempts(rows *entsql.Rows) ([]AttemptData, error) {
	defer rows.Close()

	var out []AttemptData
	for rows.Next() {
		var (
			a                 AttemptData
			qids, rids        string
			started, finished string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Tier, &a.Department, &a.Year,
			&qids, &rids, &a.CurrentIndex, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		var err error
		if a.QuestionIDs, err = decodeIDs(qids); err != nil {
			return nil, err
		}
		if a.ReviewIDs, err = decodeIDs(rids); err != nil {
			return nil, err
		}
		if a.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if a.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

func scanAnswers(rows *entsql.Rows) ([]AnswerData, error) {
	defer rows.Close()

	var out []AnswerData
	for rows.Next() {
		var (
			a               AnswerData
			correct, review int
			elapsedMs       int64
			answeredAt      string
		)
		if err := rows.Scan(&a.Sequence, &a.AttemptID, &a.UserID, &a.QuestionID, &a.Position,
			&a.Tier, &a.Department, &a.Year, &a.Chosen, &correct, &review,
			&elapsedMs, &answeredAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		a.Correct = correct != 0
		a.Review = review != 0
		a.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		t, err := parseTime(answeredAt)
		if err != nil {
			return nil, err
		}
		a.AnsweredAt = t
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}
	return out, nil
}
