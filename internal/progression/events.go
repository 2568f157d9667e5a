package progression

import "sync"

// EventType identifies a progression event.
type EventType string

const (
	SectionCompleted EventType = "section_completed"
	ModuleCompleted  EventType = "module_completed"
)

// Event is an informational notification emitted by Advance. XP is the
// section's reward for SectionCompleted and the module's total reward for
// ModuleCompleted.
type Event struct {
	Type         EventType `json:"type"`
	XP           int       `json:"xp"`
	ModuleID     string    `json:"module_id"`
	SectionID    string    `json:"section_id"`
	SectionIndex int       `json:"section_index"`
}

// EventSink receives events as they are emitted. Delivery is fire-and-forget.
type EventSink interface {
	Publish(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

func (f SinkFunc) Publish(e Event) { f(e) }

type nopSink struct{}

func (nopSink) Publish(Event) {}

// Recorder is an EventSink that keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
