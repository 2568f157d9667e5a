// Package progression sequences a learner through the sections of one module.
// The controller is a synchronous in-memory state machine; hosts that share it
// between goroutines must serialize access.
package progression

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/p-n-ai/pai-quest/internal/curriculum"
	"github.com/p-n-ai/pai-quest/internal/quiz"
)

// ErrSectionNotComplete is returned by Advance when the current quiz has not
// been submitted.
var ErrSectionNotComplete = errors.New("section not complete")

// Labels for the advance button.
const (
	LabelNext           = "Next"
	LabelCompleteModule = "Complete Module"
)

// Controller owns the progression state of one module session.
type Controller struct {
	module    curriculum.Module
	sink      EventSink
	current   int
	completed map[int]bool
	complete  bool
	quiz      *quiz.Evaluator
}

// New starts a session on module at section 0. A nil sink discards events.
func New(module curriculum.Module, sink EventSink) (*Controller, error) {
	if err := module.Validate(); err != nil {
		return nil, fmt.Errorf("starting progression: %w", err)
	}
	if sink == nil {
		sink = nopSink{}
	}
	c := &Controller{module: module, sink: sink}
	c.Reset()
	return c, nil
}

// Advance completes the current section. On a quiz section it requires a
// submitted quiz and otherwise returns ErrSectionNotComplete without changing
// state. On a complete module it is a no-op returning a zero Event.
func (c *Controller) Advance() (Event, error) {
	if c.complete {
		return Event{}, nil
	}

	section := c.module.Sections[c.current]
	if section.IsQuiz() && (c.quiz == nil || !c.quiz.Submitted()) {
		return Event{}, ErrSectionNotComplete
	}

	c.completed[c.current] = true
	ev := Event{
		ModuleID:     c.module.ID,
		SectionID:    section.ID,
		SectionIndex: c.current,
	}

	if c.current == len(c.module.Sections)-1 {
		c.complete = true
		ev.Type = ModuleCompleted
		ev.XP = c.module.XPReward
	} else {
		c.enter(c.current + 1)
		ev.Type = SectionCompleted
		ev.XP = section.XPReward
	}

	c.sink.Publish(ev)
	return ev, nil
}

// Retreat moves back one section, discarding the quiz state of the section
// being left. It reports false when at the first section or once complete.
func (c *Controller) Retreat() bool {
	if c.complete || c.current == 0 {
		return false
	}
	c.enter(c.current - 1)
	return true
}

// Reset returns to the first section with nothing completed.
func (c *Controller) Reset() {
	c.completed = make(map[int]bool, len(c.module.Sections))
	c.complete = false
	c.enter(0)
}

func (c *Controller) enter(i int) {
	c.current = i
	c.quiz = nil
	if s := c.module.Sections[i]; s.IsQuiz() {
		c.quiz = quiz.New(s.Questions)
	}
}

// CurrentSection returns the section being studied. ok is false once the
// module is complete.
func (c *Controller) CurrentSection() (s curriculum.Section, ok bool) {
	if c.complete {
		return curriculum.Section{}, false
	}
	return c.module.Sections[c.current], true
}

// CurrentIndex returns the index of the current section. After completion it
// stays on the last section.
func (c *Controller) CurrentIndex() int { return c.current }

// CompletedIndices returns the completed section indices in ascending order.
func (c *Controller) CompletedIndices() []int {
	out := make([]int, 0, len(c.completed))
	for i := range c.completed {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// IsCompleted reports whether section i has been completed.
func (c *Controller) IsCompleted(i int) bool { return c.completed[i] }

// IsComplete reports whether the module is complete.
func (c *Controller) IsComplete() bool { return c.complete }

// Quiz returns the evaluator of the current quiz section, or nil when the
// current section is not a quiz. After completion it returns the frozen
// evaluator of a final quiz section.
func (c *Controller) Quiz() *quiz.Evaluator { return c.quiz }

// Module returns the module being progressed through.
func (c *Controller) Module() curriculum.Module { return c.module }

// TotalSections returns the number of sections in the module.
func (c *Controller) TotalSections() int { return len(c.module.Sections) }

// IsLastSection reports whether the current section is the final one.
func (c *Controller) IsLastSection() bool {
	return c.current == len(c.module.Sections)-1
}

// AdvanceLabel returns the caption for the advance control.
func (c *Controller) AdvanceLabel() string {
	if c.IsLastSection() {
		return LabelCompleteModule
	}
	return LabelNext
}

// ProgressPercent returns the position through the module, counting the
// current section as reached.
func (c *Controller) ProgressPercent() int {
	if c.complete {
		return 100
	}
	return int(math.Round(100 * float64(c.current+1) / float64(len(c.module.Sections))))
}

// Snapshot is a value copy of the progression state.
type Snapshot struct {
	ModuleID        string `json:"module_id"`
	CurrentIndex    int    `json:"current_index"`
	TotalSections   int    `json:"total_sections"`
	Completed       []int  `json:"completed"`
	Complete        bool   `json:"complete"`
	ProgressPercent int    `json:"progress_percent"`
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		ModuleID:        c.module.ID,
		CurrentIndex:    c.current,
		TotalSections:   len(c.module.Sections),
		Completed:       c.CompletedIndices(),
		Complete:        c.complete,
		ProgressPercent: c.ProgressPercent(),
	}
}
