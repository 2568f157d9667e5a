package session

import (
	"sort"
	"sync"
	"time"
)

// Achievement is a completed module.
type Achievement struct {
	ModuleID    string    `json:"module_id"`
	CompletedAt time.Time `json:"completed_at"`
}

type learnerRecord struct {
	xp        int
	awarded   map[string]bool
	completed map[string]time.Time
}

// Achievements tracks, per learner, which modules are completed and how much
// XP has been awarded. Every section and module reward is counted once per
// learner, however often the module is replayed. Records live for the
// lifetime of the process.
type Achievements struct {
	learners map[string]*learnerRecord
	mu       sync.RWMutex
}

func NewAchievements() *Achievements {
	return &Achievements{learners: make(map[string]*learnerRecord)}
}

func (a *Achievements) record(learnerID string) *learnerRecord {
	r, ok := a.learners[learnerID]
	if !ok {
		r = &learnerRecord{awarded: map[string]bool{}, completed: map[string]time.Time{}}
		a.learners[learnerID] = r
	}
	return r
}

// AwardSection credits a section reward. It reports false when the learner
// already earned it.
func (a *Achievements) AwardSection(learnerID, moduleID, sectionID string, points int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.record(learnerID)
	key := moduleID + "/" + sectionID
	if r.awarded[key] {
		return false
	}
	r.awarded[key] = true
	r.xp += points
	return true
}

// CompleteModule marks moduleID complete and credits its reward once.
func (a *Achievements) CompleteModule(learnerID, moduleID string, points int, at time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.record(learnerID)
	if _, ok := r.completed[moduleID]; ok {
		return false
	}
	r.completed[moduleID] = at
	r.xp += points
	return true
}

// Completed reports whether the learner has completed moduleID.
func (a *Achievements) Completed(learnerID, moduleID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	r, ok := a.learners[learnerID]
	if !ok {
		return false
	}
	_, done := r.completed[moduleID]
	return done
}

// XP returns the learner's total awarded XP.
func (a *Achievements) XP(learnerID string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if r, ok := a.learners[learnerID]; ok {
		return r.xp
	}
	return 0
}

// List returns the learner's completed modules, oldest first.
func (a *Achievements) List(learnerID string) []Achievement {
	a.mu.RLock()
	defer a.mu.RUnlock()
	r, ok := a.learners[learnerID]
	if !ok {
		return []Achievement{}
	}
	out := make([]Achievement, 0, len(r.completed))
	for id, at := range r.completed {
		out = append(out, Achievement{ModuleID: id, CompletedAt: at})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].ModuleID < out[j].ModuleID
		}
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out
}
