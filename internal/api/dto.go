package api

import (
	"fmt"
	"time"

	"github.com/p-n-ai/pai-quest/internal/curriculum"
	"github.com/p-n-ai/pai-quest/internal/progression"
	"github.com/p-n-ai/pai-quest/internal/quiz"
	"github.com/p-n-ai/pai-quest/internal/session"
	"github.com/p-n-ai/pai-quest/internal/xp"
)

// Response bodies never carry answer keys before the learner's quiz is
// revealed.

type moduleSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	XPReward      int    `json:"xp_reward"`
	XPBadge       string `json:"xp_badge"`
	TotalSections int    `json:"total_sections"`
	QuestionCount int    `json:"question_count"`
}

type moduleDetail struct {
	moduleSummary
	Sections []sectionDTO `json:"sections"`
}

type sectionDTO struct {
	ID            string                 `json:"id"`
	Title         string                 `json:"title"`
	Kind          curriculum.SectionKind `json:"kind"`
	KindLabel     string                 `json:"kind_label"`
	XPReward      int                    `json:"xp_reward"`
	Content       string                 `json:"content,omitempty"`
	QuestionCount int                    `json:"question_count,omitempty"`
}

func toSummary(m curriculum.Module) moduleSummary {
	return moduleSummary{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		XPReward:      m.XPReward,
		XPBadge:       xp.Compact(m.XPReward),
		TotalSections: m.TotalSections(),
		QuestionCount: m.QuestionCount(),
	}
}

func toSection(s curriculum.Section, withContent bool) sectionDTO {
	dto := sectionDTO{
		ID:            s.ID,
		Title:         s.Title,
		Kind:          s.Kind,
		KindLabel:     s.Kind.Label(),
		XPReward:      s.XPReward,
		QuestionCount: len(s.Questions),
	}
	if withContent {
		dto.Content = s.Content
	}
	return dto
}

func toDetail(m curriculum.Module) moduleDetail {
	d := moduleDetail{moduleSummary: toSummary(m), Sections: make([]sectionDTO, len(m.Sections))}
	for i, s := range m.Sections {
		d.Sections[i] = toSection(s, false)
	}
	return d
}

type sessionDTO struct {
	ID              string        `json:"id"`
	LearnerID       string        `json:"learner_id"`
	StartedAt       time.Time     `json:"started_at"`
	Module          moduleSummary `json:"module"`
	CurrentIndex    int           `json:"current_index"`
	TotalSections   int           `json:"total_sections"`
	Completed       []int         `json:"completed"`
	Complete        bool          `json:"complete"`
	ProgressPercent int           `json:"progress_percent"`
	Position        string        `json:"position"`
	AdvanceLabel    string        `json:"advance_label"`
	Section         *sectionDTO   `json:"section"`
	Quiz            *quizDTO      `json:"quiz,omitempty"`
}

type quizDTO struct {
	State         quiz.State    `json:"state"`
	Questions     []questionDTO `json:"questions"`
	AnsweredCount int           `json:"answered_count"`
	Total         int           `json:"total"`
	CanSubmit     bool          `json:"can_submit"`
	Result        *quiz.Result  `json:"result,omitempty"`
}

type questionDTO struct {
	ID            string      `json:"id"`
	Prompt        string      `json:"prompt"`
	Options       []optionDTO `json:"options"`
	Selected      *int        `json:"selected"`
	CorrectAnswer *int        `json:"correct_answer,omitempty"`
	Explanation   string      `json:"explanation,omitempty"`
}

type optionDTO struct {
	Text  string           `json:"text"`
	State quiz.OptionState `json:"state"`
}

func toSession(v session.View) sessionDTO {
	dto := sessionDTO{
		ID:              v.ID,
		LearnerID:       v.LearnerID,
		StartedAt:       v.StartedAt,
		Module:          toSummary(v.Module),
		CurrentIndex:    v.Progress.CurrentIndex,
		TotalSections:   v.Progress.TotalSections,
		Completed:       v.Progress.Completed,
		Complete:        v.Progress.Complete,
		ProgressPercent: v.Progress.ProgressPercent,
		Position:        fmt.Sprintf("Section %d of %d", v.Progress.CurrentIndex+1, v.Progress.TotalSections),
		AdvanceLabel:    v.AdvanceLabel,
	}
	if v.Section != nil {
		s := toSection(*v.Section, true)
		dto.Section = &s
	}
	if v.Quiz != nil {
		dto.Quiz = toQuiz(v.Quiz)
	}
	return dto
}

func toQuiz(q *session.QuizView) *quizDTO {
	revealed := q.State == quiz.StateRevealed
	dto := &quizDTO{
		State:         q.State,
		Questions:     make([]questionDTO, len(q.Questions)),
		AnsweredCount: q.AnsweredCount,
		Total:         len(q.Questions),
		CanSubmit:     q.CanSubmit,
		Result:        q.Result,
	}
	for i, question := range q.Questions {
		qd := questionDTO{
			ID:      question.ID,
			Prompt:  question.Prompt,
			Options: make([]optionDTO, len(question.Options)),
		}
		states := q.Options[question.ID]
		for j, text := range question.Options {
			qd.Options[j] = optionDTO{Text: text, State: states[j]}
		}
		if a, ok := q.Answers[question.ID]; ok {
			qd.Selected = &a
		}
		if revealed {
			key := question.CorrectAnswer
			qd.CorrectAnswer = &key
			qd.Explanation = question.Explanation
		}
		dto.Questions[i] = qd
	}
	return dto
}

type advanceResponse struct {
	Session sessionDTO         `json:"session"`
	Event   *progression.Event `json:"event,omitempty"`
}

type retreatResponse struct {
	Session sessionDTO `json:"session"`
	Moved   bool       `json:"moved"`
}

type skillDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Difficulty  string    `json:"difficulty"`
	Paths       []pathDTO `json:"paths"`
}

type pathDTO struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Modules []pathModuleDTO `json:"modules"`
}

type pathModuleDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Available bool   `json:"available"`
	Unlocked  bool   `json:"unlocked"`
	Completed bool   `json:"completed"`
}

type achievementsDTO struct {
	LearnerID string                `json:"learner_id"`
	XP        int                   `json:"xp"`
	XPLabel   string                `json:"xp_label"`
	XPBadge   string                `json:"xp_badge"`
	Completed []session.Achievement `json:"completed"`
}
