package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/p-n-ai/pai-quest/internal/progression"
)

// Session is one learner working through one module. Its controller is only
// touched while mu is held.
type Session struct {
	ID        string
	LearnerID string
	ModuleID  string
	StartedAt time.Time

	mu         sync.Mutex
	ctrl       *progression.Controller
	lastActive atomic.Int64 // unix nanos
}

func (s *Session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

// LastActive returns the time of the last operation on the session.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// MemoryStore is the in-memory registry of live sessions.
type MemoryStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty session registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (st *MemoryStore) Add(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

func (st *MemoryStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Remove deletes and returns the session with id.
func (st *MemoryStore) Remove(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	return s, ok
}

// IdleSince returns sessions with no activity after cutoff.
func (st *MemoryStore) IdleSince(cutoff time.Time) []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	var out []*Session
	for _, s := range st.sessions {
		if s.LastActive().Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

func (st *MemoryStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
