package curriculum_test

import (
	"errors"
	"testing"

	"github.com/p-n-ai/pai-quest/internal/curriculum"
)

func quizModule() curriculum.Module {
	return curriculum.Module{
		ID:       "m1",
		Title:    "Module One",
		XPReward: 40,
		Sections: []curriculum.Section{
			{ID: "intro", Title: "Intro", Kind: curriculum.KindExplanation, XPReward: 10},
			{ID: "check", Title: "Check", Kind: curriculum.KindQuiz, XPReward: 20, Questions: []curriculum.QuizQuestion{
				{ID: "q1", Prompt: "?", Options: []string{"a", "b"}, CorrectAnswer: 1},
			}},
		},
	}
}

func TestModule_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *curriculum.Module)
	}{
		{"missing id", func(m *curriculum.Module) { m.ID = "" }},
		{"no sections", func(m *curriculum.Module) { m.Sections = nil }},
		{"negative module xp", func(m *curriculum.Module) { m.XPReward = -1 }},
		{"negative section xp", func(m *curriculum.Module) { m.Sections[0].XPReward = -5 }},
		{"section without id", func(m *curriculum.Module) { m.Sections[0].ID = "" }},
		{"unknown kind", func(m *curriculum.Module) { m.Sections[0].Kind = "video" }},
		{"single option", func(m *curriculum.Module) { m.Sections[1].Questions[0].Options = []string{"a"} }},
		{"negative key", func(m *curriculum.Module) { m.Sections[1].Questions[0].CorrectAnswer = -1 }},
		{"duplicate question", func(m *curriculum.Module) {
			q := m.Sections[1].Questions[0]
			m.Sections[1].Questions = append(m.Sections[1].Questions, q)
		}},
	}

	if err := quizModule().Validate(); err != nil {
		t.Fatalf("Validate() on valid module error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := quizModule()
			tt.mutate(&m)
			if err := m.Validate(); !errors.Is(err, curriculum.ErrInvalidModule) {
				t.Errorf("Validate() error = %v, want ErrInvalidModule", err)
			}
		})
	}
}

func TestModule_ValidateAllowsEmptyQuiz(t *testing.T) {
	m := quizModule()
	m.Sections[1].Questions = nil
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil for a quiz with no questions", err)
	}
}

func TestModule_Normalize(t *testing.T) {
	m := curriculum.Module{ID: "bare"}.Normalize()

	if m.Title != "Module" {
		t.Errorf("Title = %q, want Module", m.Title)
	}
	if m.Description != "Learn new programming concepts" {
		t.Errorf("Description = %q", m.Description)
	}
	if m.XPReward != 100 {
		t.Errorf("XPReward = %d, want 100", m.XPReward)
	}

	kept := quizModule().Normalize()
	if kept.Title != "Module One" || kept.XPReward != 40 {
		t.Errorf("Normalize() overwrote set fields: %+v", kept)
	}
}

func TestModule_Fingerprint(t *testing.T) {
	a := quizModule()
	b := quizModule()

	if a.Fingerprint() == "" {
		t.Fatal("Fingerprint() is empty")
	}
	if len(a.Fingerprint()) != 32 {
		t.Errorf("Fingerprint() length = %d, want 32", len(a.Fingerprint()))
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("equal modules should share a fingerprint")
	}

	b.Sections[1].Questions[0].CorrectAnswer = 0
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("changing an answer key should change the fingerprint")
	}
}

func TestModule_Counts(t *testing.T) {
	m := quizModule()
	if m.TotalSections() != 2 {
		t.Errorf("TotalSections() = %d, want 2", m.TotalSections())
	}
	if m.QuestionCount() != 1 {
		t.Errorf("QuestionCount() = %d, want 1", m.QuestionCount())
	}
	if !m.Sections[1].IsQuiz() || m.Sections[0].IsQuiz() {
		t.Error("IsQuiz() mismatch")
	}
}

func TestSectionKind_Label(t *testing.T) {
	tests := []struct {
		kind curriculum.SectionKind
		want string
	}{
		{curriculum.KindExplanation, "Explanation"},
		{curriculum.KindExample, "Example"},
		{curriculum.KindPractice, "Practice"},
		{curriculum.KindQuiz, "Quiz"},
	}
	for _, tt := range tests {
		if got := tt.kind.Label(); got != tt.want {
			t.Errorf("%q.Label() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPath_IsUnlocked(t *testing.T) {
	p := curriculum.Path{ID: "html-css", ModuleIDs: []string{"a", "b", "c"}}
	done := map[string]bool{"a": true}
	completed := func(id string) bool { return done[id] }

	tests := []struct {
		i    int
		want bool
	}{
		{-1, false},
		{0, true},
		{1, true},
		{2, false},
		{3, false},
	}
	for _, tt := range tests {
		if got := p.IsUnlocked(tt.i, completed); got != tt.want {
			t.Errorf("IsUnlocked(%d) = %v, want %v", tt.i, got, tt.want)
		}
	}
}
