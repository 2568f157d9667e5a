package session

import (
	"time"

	"github.com/p-n-ai/pai-quest/internal/curriculum"
	"github.com/p-n-ai/pai-quest/internal/progression"
	"github.com/p-n-ai/pai-quest/internal/quiz"
)

// View is a consistent read of a session taken under its lock.
type View struct {
	ID           string
	LearnerID    string
	StartedAt    time.Time
	Module       curriculum.Module
	Progress     progression.Snapshot
	Section      *curriculum.Section // nil once the module is complete
	AdvanceLabel string
	Quiz         *QuizView // nil when there is no quiz to show
}

// QuizView is the quiz state of the current (or final) quiz section.
type QuizView struct {
	State         quiz.State
	Questions     []curriculum.QuizQuestion
	Answers       map[string]int
	AnsweredCount int
	CanSubmit     bool
	Result        *quiz.Result // set once submitted
	Options       map[string][]quiz.OptionState
}

func (s *Session) view() View {
	v := View{
		ID:           s.ID,
		LearnerID:    s.LearnerID,
		StartedAt:    s.StartedAt,
		Module:       s.ctrl.Module(),
		Progress:     s.ctrl.Snapshot(),
		AdvanceLabel: s.ctrl.AdvanceLabel(),
	}
	if sec, ok := s.ctrl.CurrentSection(); ok {
		v.Section = &sec
	}
	if q := s.ctrl.Quiz(); q != nil {
		v.Quiz = quizView(q)
	}
	return v
}

func quizView(q *quiz.Evaluator) *QuizView {
	qv := &QuizView{
		State:         q.State(),
		Questions:     q.Questions(),
		Answers:       q.Answers(),
		AnsweredCount: q.AnsweredCount(),
		CanSubmit:     q.CanSubmit(),
		Options:       make(map[string][]quiz.OptionState),
	}
	if q.Submitted() {
		r := q.Result()
		qv.Result = &r
	}
	for _, question := range qv.Questions {
		states := make([]quiz.OptionState, len(question.Options))
		for i := range question.Options {
			states[i] = q.OptionState(question.ID, i)
		}
		qv.Options[question.ID] = states
	}
	return qv
}
