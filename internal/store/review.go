package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var reviewColumns = []string{
	"user_id", "question_id", "level", "last_reviewed_at", "next_due_at",
	"correct_streak", "incorrect_count",
}

// reviewRepo implements ReviewRepo over SQL builders.
type reviewRepo struct {
	drv *entsql.Driver
}

func (r *reviewRepo) Reviews(ctx context.Context, userID string) ([]ReviewData, error) {
	return r.query(ctx, entsql.EQ("user_id", userID))
}

func (r *reviewRepo) Review(ctx context.Context, userID string, questionID int64) (*ReviewData, error) {
	out, err := r.query(ctx, entsql.And(entsql.EQ("user_id", userID), entsql.EQ("question_id", questionID)))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

func (r *reviewRepo) DueReviews(ctx context.Context, userID string, now time.Time) ([]ReviewData, error) {
	return r.query(ctx, entsql.And(
		entsql.EQ("user_id", userID),
		entsql.LTE("next_due_at", formatTime(now)),
	))
}

func (r *reviewRepo) ResetReviews(ctx context.Context, userID string) (int64, error) {
	q, args := builder().Delete(tableReviews).
		Where(entsql.EQ("user_id", userID)).
		Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, q, args, &res); err != nil {
		return 0, fmt.Errorf("reset reviews: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset reviews: %w", err)
	}
	return n, nil
}

func (r *reviewRepo) query(ctx context.Context, where *entsql.Predicate) ([]ReviewData, error) {
	b := builder()
	q, args := b.Select(reviewColumns...).
		From(b.Table(tableReviews)).
		Where(where).
		OrderBy("question_id").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var out []ReviewData
	for rows.Next() {
		var (
			d          ReviewData
			last, next string
		)
		if err := rows.Scan(&d.UserID, &d.QuestionID, &d.Level, &last, &next,
			&d.CorrectStreak, &d.IncorrectCount); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		var err error
		if d.LastReviewedAt, err = parseTime(last); err != nil {
			return nil, err
		}
		if d.NextDueAt, err = parseTime(next); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return out, nil
}

// upsertReview writes the full record, replacing any existing row.
func upsertReview(ctx context.Context, eq dialect.ExecQuerier, d ReviewData) error {
	q, args := builder().Insert(tableReviews).
		Columns(reviewColumns...).
		Values(d.UserID, d.QuestionID, d.Level, formatTime(d.LastReviewedAt), formatTime(d.NextDueAt),
			d.CorrectStreak, d.IncorrectCount).
		OnConflict(
			entsql.ConflictColumns("user_id", "question_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := eq.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("upsert review %d: %w", d.QuestionID, err)
	}
	return nil
}
