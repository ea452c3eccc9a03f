package session

import "fmt"

// InvalidRequestError indicates malformed start or answer parameters.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Reason
	}
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// OutOfSequenceError indicates an operation called in the wrong state.
type OutOfSequenceError struct {
	Op     string
	Status Status
}

func (e *OutOfSequenceError) Error() string {
	return fmt.Sprintf("%s not allowed while session is %s", e.Op, e.Status)
}

// NoCurrentQuestionError indicates there is no question to show: nothing was
// started or every question has been answered.
type NoCurrentQuestionError struct {
	Status Status
}

func (e *NoCurrentQuestionError) Error() string {
	return fmt.Sprintf("no current question (session %s)", e.Status)
}
