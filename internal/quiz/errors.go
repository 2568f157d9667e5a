package quiz

import (
	"errors"
	"fmt"
)

// Guarded no-ops. They leave the evaluator unchanged and are expected during
// normal use.
var (
	ErrAnswersLocked = errors.New("answers are locked after submission")
	ErrIncomplete    = errors.New("not every question has been answered")
	ErrNotSubmitted  = errors.New("quiz has not been submitted")
	ErrNotRevealed   = errors.New("answers have not been revealed")
)

// Contract violations wrapped by ContractError.
var (
	ErrUnknownQuestion  = errors.New("unknown question")
	ErrOptionOutOfRange = errors.New("option out of range")
)

// ContractError reports a call that no correct caller should make, such as
// answering a question from a stale quiz.
type ContractError struct {
	Op         string
	QuestionID string
	Option     int
	Err        error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("quiz: %s(%q, %d): %v", e.Op, e.QuestionID, e.Option, e.Err)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}
