package curriculum_test

import (
	"errors"
	"testing"

	"github.com/p-n-ai/pai-quest/internal/curriculum"
)

func TestCatalog_GetModule(t *testing.T) {
	c, err := curriculum.NewCatalog(quizModule())
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	m, err := c.GetModule(t.Context(), "m1")
	if err != nil {
		t.Fatalf("GetModule() error = %v", err)
	}
	if m.Title != "Module One" {
		t.Errorf("Title = %q, want Module One", m.Title)
	}

	_, err = c.GetModule(t.Context(), "missing")
	if !errors.Is(err, curriculum.ErrModuleNotFound) {
		t.Errorf("GetModule(missing) error = %v, want ErrModuleNotFound", err)
	}
}

func TestCatalog_RejectsInvalidModule(t *testing.T) {
	bad := quizModule()
	bad.Sections = nil

	if _, err := curriculum.NewCatalog(bad); !errors.Is(err, curriculum.ErrInvalidModule) {
		t.Errorf("NewCatalog() error = %v, want ErrInvalidModule", err)
	}
}

func TestCatalog_ListModulesSorted(t *testing.T) {
	b := quizModule()
	b.ID = "b"
	a := quizModule()
	a.ID = "a"

	c, err := curriculum.NewCatalog(b, a)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	list, err := c.ListModules(t.Context())
	if err != nil {
		t.Fatalf("ListModules() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("ListModules() = %v, want [a b]", ids(list))
	}
}

func TestCatalog_AddSkill(t *testing.T) {
	c, _ := curriculum.NewCatalog()

	if err := c.AddSkill(curriculum.Skill{}); !errors.Is(err, curriculum.ErrInvalidSkill) {
		t.Errorf("AddSkill(empty) error = %v, want ErrInvalidSkill", err)
	}
	if err := c.AddSkill(curriculum.Skill{ID: "web", Paths: []curriculum.Path{{}}}); !errors.Is(err, curriculum.ErrInvalidSkill) {
		t.Errorf("AddSkill(path without id) error = %v, want ErrInvalidSkill", err)
	}
	if err := c.AddSkill(curriculum.Skill{ID: "web", Title: "Web"}); err != nil {
		t.Fatalf("AddSkill() error = %v", err)
	}
	if len(c.Skills()) != 1 {
		t.Errorf("Skills() len = %d, want 1", len(c.Skills()))
	}
}

func ids(modules []curriculum.Module) []string {
	out := make([]string, len(modules))
	for i, m := range modules {
		out[i] = m.ID
	}
	return out
}
