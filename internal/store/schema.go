package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const (
	tableAttempts = "attempts"
	tableActive   = "active_attempts"
	tableAnswers  = "answer_events"
	tableReviews  = "srs_records"
)

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// ddl creates missing tables and indexes. Times are stored as fixed-width
// UTC text so they compare correctly as strings.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS attempts (
		id            TEXT    NOT NULL PRIMARY KEY,
		user_id       TEXT    NOT NULL DEFAULT '',
		tier          TEXT    NOT NULL DEFAULT '',
		department    TEXT    NOT NULL DEFAULT '',
		year          INTEGER NOT NULL DEFAULT 0,
		question_ids  TEXT    NOT NULL DEFAULT '',
		review_ids    TEXT    NOT NULL DEFAULT '',
		current_index INTEGER NOT NULL DEFAULT 0,
		started_at    TEXT    NOT NULL DEFAULT '',
		finished_at   TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS active_attempts (
		user_id    TEXT NOT NULL PRIMARY KEY,
		attempt_id TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS answer_events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence    INTEGER NOT NULL DEFAULT 0,
		attempt_id  TEXT    NOT NULL DEFAULT '',
		user_id     TEXT    NOT NULL DEFAULT '',
		question_id INTEGER NOT NULL DEFAULT 0,
		position    INTEGER NOT NULL DEFAULT 0,
		tier        TEXT    NOT NULL DEFAULT '',
		department  TEXT    NOT NULL DEFAULT '',
		year        INTEGER NOT NULL DEFAULT 0,
		chosen      TEXT    NOT NULL DEFAULT '',
		correct     INTEGER NOT NULL DEFAULT 0,
		review      INTEGER NOT NULL DEFAULT 0,
		elapsed_ms  INTEGER NOT NULL DEFAULT 0,
		answered_at TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS srs_records (
		user_id          TEXT    NOT NULL DEFAULT '',
		question_id      INTEGER NOT NULL DEFAULT 0,
		level            INTEGER NOT NULL DEFAULT 0,
		last_reviewed_at TEXT    NOT NULL DEFAULT '',
		next_due_at      TEXT    NOT NULL DEFAULT '',
		correct_streak   INTEGER NOT NULL DEFAULT 0,
		incorrect_count  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, question_id)
	)`,
	"CREATE INDEX IF NOT EXISTS attempts_user ON attempts (user_id, started_at)",
	"CREATE UNIQUE INDEX IF NOT EXISTS answer_events_position ON answer_events (attempt_id, position)",
	"CREATE INDEX IF NOT EXISTS answer_events_user ON answer_events (user_id, department)",
	"CREATE INDEX IF NOT EXISTS srs_records_due ON srs_records (user_id, next_due_at)",
}

func migrate(ctx context.Context, drv dialect.ExecQuerier) error {
	for _, q := range ddl {
		if err := drv.Exec(ctx, q, []any{}, nil); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
