// Package quiz evaluates a single quiz section: answer selection, the
// submit/reveal latches, and scoring against the answer key.
package quiz

import (
	"math"

	"github.com/p-n-ai/pai-quest/internal/curriculum"
)

// State is the evaluator's position in the answering → submitted → revealed
// sequence.
type State string

const (
	StateAnswering State = "answering"
	StateSubmitted State = "submitted"
	StateRevealed  State = "revealed"
)

// OptionState is how an option should be highlighted.
type OptionState string

const (
	OptionIdle      OptionState = "idle"
	OptionSelected  OptionState = "selected"
	OptionDimmed    OptionState = "dimmed"
	OptionCorrect   OptionState = "correct"
	OptionIncorrect OptionState = "incorrect"
)

// Result is a graded quiz.
type Result struct {
	Score   int `json:"score"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// QuestionReview is one question after reveal.
type QuestionReview struct {
	Question curriculum.QuizQuestion
	Selected int
	Correct  bool
}

// Evaluator owns the answer state of one quiz. It is not safe for concurrent
// use.
type Evaluator struct {
	questions []curriculum.QuizQuestion
	index     map[string]int
	answers   map[string]int
	submitted bool
	revealed  bool
}

// New creates an evaluator in the answering state. The questions must
// already satisfy the catalog contracts.
func New(questions []curriculum.QuizQuestion) *Evaluator {
	index := make(map[string]int, len(questions))
	for i, q := range questions {
		index[q.ID] = i
	}
	return &Evaluator{
		questions: questions,
		index:     index,
		answers:   make(map[string]int, len(questions)),
	}
}

// SelectAnswer records option as the answer to questionID, replacing any
// previous choice. It returns a *ContractError for an unknown question or an
// out-of-range option, and ErrAnswersLocked once the quiz is submitted.
func (e *Evaluator) SelectAnswer(questionID string, option int) error {
	i, ok := e.index[questionID]
	if !ok {
		return &ContractError{Op: "SelectAnswer", QuestionID: questionID, Option: option, Err: ErrUnknownQuestion}
	}
	if option < 0 || option >= len(e.questions[i].Options) {
		return &ContractError{Op: "SelectAnswer", QuestionID: questionID, Option: option, Err: ErrOptionOutOfRange}
	}
	if e.submitted {
		return ErrAnswersLocked
	}
	e.answers[questionID] = option
	return nil
}

// CanSubmit reports whether every question has an answer.
func (e *Evaluator) CanSubmit() bool {
	return len(e.answers) == len(e.questions)
}

// Submit locks the answers. Calling it again after a successful submit is a
// no-op.
func (e *Evaluator) Submit() error {
	if e.submitted {
		return nil
	}
	if !e.CanSubmit() {
		return ErrIncomplete
	}
	e.submitted = true
	return nil
}

// RevealAnswers discloses correctness. It requires a submitted quiz.
func (e *Evaluator) RevealAnswers() error {
	if !e.submitted {
		return ErrNotSubmitted
	}
	e.revealed = true
	return nil
}

// Submitted reports whether the answers are locked.
func (e *Evaluator) Submitted() bool { return e.submitted }

// Revealed reports whether correct answers are disclosed.
func (e *Evaluator) Revealed() bool { return e.revealed }

// State returns the current state.
func (e *Evaluator) State() State {
	switch {
	case e.revealed:
		return StateRevealed
	case e.submitted:
		return StateSubmitted
	}
	return StateAnswering
}

// Score counts the questions answered correctly.
func (e *Evaluator) Score() int {
	n := 0
	for _, q := range e.questions {
		if a, ok := e.answers[q.ID]; ok && a == q.CorrectAnswer {
			n++
		}
	}
	return n
}

// Result returns the score with its percentage. A quiz without questions
// scores 0%.
func (e *Evaluator) Result() Result {
	r := Result{Score: e.Score(), Total: len(e.questions)}
	if r.Total > 0 {
		r.Percent = int(math.Round(100 * float64(r.Score) / float64(r.Total)))
	}
	return r
}

// Questions returns the quiz questions in order.
func (e *Evaluator) Questions() []curriculum.QuizQuestion {
	return append([]curriculum.QuizQuestion(nil), e.questions...)
}

// AnsweredCount returns how many questions have an answer.
func (e *Evaluator) AnsweredCount() int {
	return len(e.answers)
}

// Answer returns the selected option for questionID.
func (e *Evaluator) Answer(questionID string) (int, bool) {
	a, ok := e.answers[questionID]
	return a, ok
}

// Answers returns a copy of the answer map.
func (e *Evaluator) Answers() map[string]int {
	out := make(map[string]int, len(e.answers))
	for k, v := range e.answers {
		out[k] = v
	}
	return out
}

// OptionState returns the highlight for option of questionID. Unknown
// questions and options are idle.
func (e *Evaluator) OptionState(questionID string, option int) OptionState {
	i, ok := e.index[questionID]
	if !ok || option < 0 || option >= len(e.questions[i].Options) {
		return OptionIdle
	}
	selected, answered := e.answers[questionID]
	isSelected := answered && selected == option

	switch {
	case e.revealed:
		if option == e.questions[i].CorrectAnswer {
			return OptionCorrect
		}
		if isSelected {
			return OptionIncorrect
		}
		return OptionDimmed
	case e.submitted:
		if isSelected {
			return OptionSelected
		}
		return OptionDimmed
	case isSelected:
		return OptionSelected
	}
	return OptionIdle
}

// Review returns every question with the learner's choice. It is only
// available after reveal.
func (e *Evaluator) Review() ([]QuestionReview, error) {
	if !e.revealed {
		return nil, ErrNotRevealed
	}
	out := make([]QuestionReview, len(e.questions))
	for i, q := range e.questions {
		sel := e.answers[q.ID]
		out[i] = QuestionReview{Question: q, Selected: sel, Correct: sel == q.CorrectAnswer}
	}
	return out, nil
}
