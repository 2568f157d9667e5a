// Package notify turns progression events into toast notifications and
// fans them out to the clients watching a learning session.
package notify

import (
	"time"

	"github.com/p-n-ai/pai-quest/internal/progression"
	"github.com/p-n-ai/pai-quest/internal/xp"
)

// Kind identifies a notification.
type Kind string

const (
	KindSectionCompleted Kind = "section_completed"
	KindModuleCompleted  Kind = "module_completed"
	KindQuizGate         Kind = "quiz_gate"
	KindQuizSubmitted    Kind = "quiz_submitted"
)

// Variants.
const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// Notification is a toast for the host UI.
type Notification struct {
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     string    `json:"variant"`
	XP          int       `json:"xp,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newNotification(kind Kind, title, desc, variant string, points int) Notification {
	return Notification{
		Kind:        kind,
		Title:       title,
		Description: desc,
		Variant:     variant,
		XP:          points,
		CreatedAt:   time.Now(),
	}
}

func SectionCompleted(points int) Notification {
	return newNotification(KindSectionCompleted, "Section Complete! 🎉", xp.Earned(points), VariantDefault, points)
}

func ModuleCompleted(points int) Notification {
	return newNotification(KindModuleCompleted, "Module Complete! 🏆",
		xp.Earned(points)+". Achievement unlocked!", VariantDefault, points)
}

// QuizGate is shown when the learner tries to move past an unsubmitted quiz.
func QuizGate() Notification {
	return newNotification(KindQuizGate, "Complete the Quiz",
		"Please submit the quiz before proceeding.", VariantDestructive, 0)
}

func QuizSubmitted() Notification {
	return newNotification(KindQuizSubmitted, "Quiz Submitted! 📝",
		"Great job! Click 'View Answers' to see the correct answers.", VariantDefault, 0)
}

// FromEvent converts a progression event. ok is false for unknown types.
func FromEvent(e progression.Event) (n Notification, ok bool) {
	switch e.Type {
	case progression.SectionCompleted:
		return SectionCompleted(e.XP), true
	case progression.ModuleCompleted:
		return ModuleCompleted(e.XP), true
	}
	return Notification{}, false
}
