package exam

import (
	engine "github.com/rccmquiz/rccm/internal/exam"
	"github.com/rccmquiz/rccm/internal/question"
	"github.com/rccmquiz/rccm/internal/session"
)

// startedMsg carries the new attempt and its first question.
type startedMsg struct {
	State *session.State
	First question.Record
	Err   error
}

// questionMsg carries the next question to show.
type questionMsg struct {
	Record question.Record
	Err    error
}

// answeredMsg is sent once the answer is committed.
type answeredMsg struct {
	Result *engine.AnswerResult
	Err    error
}

// finishedMsg carries the summary of the completed attempt.
type finishedMsg struct {
	Summary *session.Summary
	Err     error
}
