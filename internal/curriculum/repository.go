// Package curriculum holds the immutable learning catalog: modules, their
// sections and quiz questions, and the skills/paths that order modules.
package curriculum

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrModuleNotFound is returned when a repository has no module with the given ID.
var ErrModuleNotFound = errors.New("module not found")

// Repository is the read-only content collaborator the rest of the system
// resolves modules through.
type Repository interface {
	GetModule(ctx context.Context, id string) (Module, error)
	ListModules(ctx context.Context) ([]Module, error)
}

// Catalog is an in-memory Repository. It also holds skills and paths.
type Catalog struct {
	modules map[string]Module
	skills  map[string]Skill
	mu      sync.RWMutex
}

// NewCatalog builds a catalog from module values, normalizing and validating each.
func NewCatalog(modules ...Module) (*Catalog, error) {
	c := &Catalog{
		modules: make(map[string]Module),
		skills:  make(map[string]Skill),
	}
	for _, m := range modules {
		if err := c.AddModule(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddModule normalizes, validates and stores a module, replacing any module
// with the same ID.
func (c *Catalog) AddModule(m Module) error {
	m = m.Normalize()
	if err := m.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	c.modules[m.ID] = m
	c.mu.Unlock()
	return nil
}

// AddSkill stores a skill, replacing any skill with the same ID.
func (c *Catalog) AddSkill(s Skill) error {
	if s.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidSkill)
	}
	for _, p := range s.Paths {
		if p.ID == "" {
			return fmt.Errorf("%w: %s has a path without id", ErrInvalidSkill, s.ID)
		}
	}

	c.mu.Lock()
	c.skills[s.ID] = s
	c.mu.Unlock()
	return nil
}

// GetModule returns a module by ID.
func (c *Catalog) GetModule(_ context.Context, id string) (Module, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modules[id]
	if !ok {
		return Module{}, fmt.Errorf("%w: %s", ErrModuleNotFound, id)
	}
	return m, nil
}

// ListModules returns all modules ordered by ID.
func (c *Catalog) ListModules(_ context.Context) ([]Module, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	modules := make([]Module, 0, len(c.modules))
	for _, m := range c.modules {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].ID < modules[j].ID })
	return modules, nil
}

// Skills returns all skills ordered by ID.
func (c *Catalog) Skills() []Skill {
	c.mu.RLock()
	defer c.mu.RUnlock()
	skills := make([]Skill, 0, len(c.skills))
	for _, s := range c.skills {
		skills = append(skills, s)
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].ID < skills[j].ID })
	return skills
}

// Len returns the number of modules in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.modules)
}
