package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// historyRepo implements HistoryRepo over SQL builders.
type historyRepo struct {
	drv *entsql.Driver
}

func (r *historyRepo) DepartmentAccuracy(ctx context.Context, userID string) ([]DepartmentAccuracy, error) {
	b := builder()
	q, args := b.Select(
		"department",
		entsql.As(entsql.Count("*"), "answered"),
		entsql.As(entsql.Sum("correct"), "correct_total"),
	).
		From(b.Table(tableAnswers)).
		Where(entsql.EQ("user_id", userID)).
		GroupBy("department").
		OrderBy("department").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query department accuracy: %w", err)
	}
	defer rows.Close()

	var out []DepartmentAccuracy
	for rows.Next() {
		var d DepartmentAccuracy
		if err := rows.Scan(&d.Department, &d.Answered, &d.Correct); err != nil {
			return nil, fmt.Errorf("scan department accuracy: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate department accuracy: %w", err)
	}
	return out, nil
}

func (r *historyRepo) Answers(ctx context.Context, userID string, limit int) ([]AnswerData, error) {
	b := builder()
	sel := b.Select(answerColumns...).
		From(b.Table(tableAnswers)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	q, args := sel.Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	return scanAnswers(&rows)
}
