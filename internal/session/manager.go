// Package session hosts learning sessions: it resolves modules from the
// catalog, serializes access to each session's progression controller, and
// fans progression events out to achievements, analytics and notifications.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-quest/internal/curriculum"
	"github.com/p-n-ai/pai-quest/internal/notify"
	"github.com/p-n-ai/pai-quest/internal/progression"
	"github.com/p-n-ai/pai-quest/internal/quiz"
	"github.com/p-n-ai/pai-quest/internal/report"
)

const defaultIdleTTL = 2 * time.Hour

var (
	// ErrNotFound is returned for an unknown or expired session.
	ErrNotFound = errors.New("session not found")
	// ErrLearnerRequired is returned by Start without a learner ID.
	ErrLearnerRequired = errors.New("learner_id is required")
	// ErrNoActiveQuiz is returned by quiz operations outside a quiz section.
	ErrNoActiveQuiz = errors.New("current section has no quiz")
)

// Notifier receives toast notifications for a session.
type Notifier interface {
	Publish(sessionID string, n notify.Notification)
	Close(sessionID string)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, notify.Notification) {}
func (nopNotifier) Close(string)                        {}

// ManagerConfig holds dependencies for the session manager.
type ManagerConfig struct {
	Catalog      curriculum.Repository
	Store        *MemoryStore
	Events       EventLogger
	Notifier     Notifier
	Achievements *Achievements
	IdleTTL      time.Duration // sessions idle longer are swept (default 2h)
	Now          func() time.Time
}

// Manager owns every live session.
type Manager struct {
	catalog      curriculum.Repository
	store        *MemoryStore
	events       EventLogger
	notifier     Notifier
	achievements *Achievements
	idleTTL      time.Duration
	now          func() time.Time
}

// NewManager creates a session manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	m := &Manager{
		catalog:      cfg.Catalog,
		store:        cfg.Store,
		events:       cfg.Events,
		notifier:     cfg.Notifier,
		achievements: cfg.Achievements,
		idleTTL:      cfg.IdleTTL,
		now:          cfg.Now,
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	if m.events == nil {
		m.events = NopEventLogger{}
	}
	if m.notifier == nil {
		m.notifier = nopNotifier{}
	}
	if m.achievements == nil {
		m.achievements = NewAchievements()
	}
	if m.idleTTL == 0 {
		m.idleTTL = defaultIdleTTL
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m, nil
}

// Catalog returns the module repository sessions are started from.
func (m *Manager) Catalog() curriculum.Repository { return m.catalog }

// Achievements returns the per-learner completion records.
func (m *Manager) Achievements() *Achievements { return m.achievements }

// Len returns the number of live sessions.
func (m *Manager) Len() int { return m.store.Len() }

// Start opens a session for learnerID on moduleID.
func (m *Manager) Start(ctx context.Context, learnerID, moduleID string) (View, error) {
	if learnerID == "" {
		return View{}, ErrLearnerRequired
	}

	module, err := m.catalog.GetModule(ctx, moduleID)
	if err != nil {
		return View{}, fmt.Errorf("starting session: %w", err)
	}

	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		LearnerID: learnerID,
		ModuleID:  module.ID,
		StartedAt: now,
	}
	s.touch(now)

	s.ctrl, err = progression.New(module, progression.SinkFunc(func(ev progression.Event) {
		m.onProgress(s, ev)
	}))
	if err != nil {
		return View{}, fmt.Errorf("starting session: %w", err)
	}
	m.store.Add(s)

	slog.Info("session started",
		"session_id", s.ID,
		"learner_id", learnerID,
		"module_id", module.ID,
	)
	m.logEvent(s, EventSessionStarted, map[string]any{"total_sections": module.TotalSections()})

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// Get returns the current view of a session.
func (m *Manager) Get(id string) (View, error) {
	var v View
	err := m.with(id, func(s *Session) error {
		v = s.view()
		return nil
	})
	return v, err
}

// End destroys a session, as when the learner leaves the module view.
func (m *Manager) End(id string) error {
	s, ok := m.store.Remove(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.notifier.Close(id)
	m.logEvent(s, EventSessionEnded, nil)
	slog.Info("session ended", "session_id", id, "learner_id", s.LearnerID)
	return nil
}

// Advance moves past the current section. When a quiz gate blocks it, the
// error is progression.ErrSectionNotComplete and the view is unchanged.
func (m *Manager) Advance(id string) (View, progression.Event, error) {
	var v View
	var ev progression.Event
	err := m.with(id, func(s *Session) error {
		var err error
		ev, err = s.ctrl.Advance()
		if errors.Is(err, progression.ErrSectionNotComplete) {
			m.notifier.Publish(s.ID, notify.QuizGate())
			m.logEvent(s, EventAdvanceBlocked, map[string]any{"section_index": s.ctrl.CurrentIndex()})
		}
		v = s.view()
		return err
	})
	return v, ev, err
}

// Retreat moves back one section. moved is false at the first section or
// once the module is complete.
func (m *Manager) Retreat(id string) (v View, moved bool, err error) {
	err = m.with(id, func(s *Session) error {
		moved = s.ctrl.Retreat()
		v = s.view()
		return nil
	})
	return v, moved, err
}

// Reset returns the session to its first section.
func (m *Manager) Reset(id string) (View, error) {
	var v View
	err := m.with(id, func(s *Session) error {
		s.ctrl.Reset()
		m.logEvent(s, EventSessionReset, nil)
		v = s.view()
		return nil
	})
	return v, err
}

// SelectAnswer records an answer on the current quiz. Contract violations
// are returned as *quiz.ContractError and logged at error level.
func (m *Manager) SelectAnswer(id, questionID string, option int) (View, error) {
	var v View
	err := m.withQuiz(id, func(s *Session, q *quiz.Evaluator) error {
		err := q.SelectAnswer(questionID, option)
		var ce *quiz.ContractError
		if errors.As(err, &ce) {
			slog.Error("quiz contract violation",
				"session_id", s.ID,
				"module_id", s.ModuleID,
				"question_id", ce.QuestionID,
				"option", ce.Option,
				"error", ce.Err,
			)
		}
		v = s.view()
		return err
	})
	return v, err
}

// SubmitQuiz locks the answers of the current quiz.
func (m *Manager) SubmitQuiz(id string) (View, error) {
	var v View
	err := m.withQuiz(id, func(s *Session, q *quiz.Evaluator) error {
		already := q.Submitted()
		if err := q.Submit(); err != nil {
			v = s.view()
			return err
		}
		if !already {
			r := q.Result()
			m.notifier.Publish(s.ID, notify.QuizSubmitted())
			m.logEvent(s, EventQuizSubmitted, map[string]any{
				"section_index": s.ctrl.CurrentIndex(),
				"score":         r.Score,
				"total":         r.Total,
				"percent":       r.Percent,
			})
		}
		v = s.view()
		return nil
	})
	return v, err
}

// RevealAnswers discloses the correct answers of a submitted quiz.
func (m *Manager) RevealAnswers(id string) (View, error) {
	var v View
	err := m.withQuiz(id, func(s *Session, q *quiz.Evaluator) error {
		already := q.Revealed()
		if err := q.RevealAnswers(); err != nil {
			v = s.view()
			return err
		}
		if !already {
			m.logEvent(s, EventAnswersRevealed, map[string]any{"section_index": s.ctrl.CurrentIndex()})
		}
		v = s.view()
		return nil
	})
	return v, err
}

// QuizReview returns the exportable review of a revealed quiz.
func (m *Manager) QuizReview(id string) (report.QuizReview, error) {
	var r report.QuizReview
	err := m.withQuiz(id, func(s *Session, q *quiz.Evaluator) error {
		items, err := q.Review()
		if err != nil {
			return err
		}
		module := s.ctrl.Module()
		r = report.QuizReview{
			ModuleTitle:  module.Title,
			SectionTitle: module.Sections[s.ctrl.CurrentIndex()].Title,
			LearnerID:    s.LearnerID,
			Result:       q.Result(),
			Questions:    items,
		}
		return nil
	})
	return r, err
}

// Sweep ends sessions idle for longer than the idle TTL and returns how many
// were removed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.idleTTL)
	n := 0
	for _, s := range m.store.IdleSince(cutoff) {
		if !s.LastActive().Before(cutoff) {
			continue
		}
		if err := m.End(s.ID); err == nil {
			n++
		}
	}
	if n > 0 {
		slog.Info("swept idle sessions", "count", n, "remaining", m.store.Len())
	}
	return n
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) with(id string, fn func(s *Session) error) error {
	s, ok := m.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(m.now())
	return fn(s)
}

func (m *Manager) withQuiz(id string, fn func(s *Session, q *quiz.Evaluator) error) error {
	return m.with(id, func(s *Session) error {
		q := s.ctrl.Quiz()
		if q == nil {
			return ErrNoActiveQuiz
		}
		return fn(s, q)
	})
}

// onProgress runs inside Advance with the session lock held.
func (m *Manager) onProgress(s *Session, ev progression.Event) {
	switch ev.Type {
	case progression.SectionCompleted:
		m.achievements.AwardSection(s.LearnerID, ev.ModuleID, ev.SectionID, ev.XP)
		m.logEvent(s, EventSectionCompleted, map[string]any{
			"section_id":    ev.SectionID,
			"section_index": ev.SectionIndex,
			"xp":            ev.XP,
		})
	case progression.ModuleCompleted:
		first := m.achievements.CompleteModule(s.LearnerID, ev.ModuleID, ev.XP, m.now())
		m.logEvent(s, EventModuleCompleted, map[string]any{
			"xp":    ev.XP,
			"first": first,
		})
		slog.Info("module completed",
			"session_id", s.ID,
			"learner_id", s.LearnerID,
			"module_id", ev.ModuleID,
		)
	}

	if n, ok := notify.FromEvent(ev); ok {
		m.notifier.Publish(s.ID, n)
	}
}

func (m *Manager) logEvent(s *Session, eventType string, data map[string]any) {
	err := m.events.LogEvent(Event{
		SessionID: s.ID,
		LearnerID: s.LearnerID,
		ModuleID:  s.ModuleID,
		EventType: eventType,
		Data:      data,
		CreatedAt: m.now(),
	})
	if err != nil {
		slog.Warn("failed to log learning event", "type", eventType, "session_id", s.ID, "error", err)
	}
}
