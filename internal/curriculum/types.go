package curriculum

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SectionKind is the kind of a section within a module.
type SectionKind string

const (
	KindExplanation SectionKind = "explanation"
	KindExample     SectionKind = "example"
	KindPractice    SectionKind = "practice"
	KindQuiz        SectionKind = "quiz"
)

// Valid reports whether k is one of the known section kinds.
func (k SectionKind) Valid() bool {
	switch k {
	case KindExplanation, KindExample, KindPractice, KindQuiz:
		return true
	}
	return false
}

// Label returns the badge text for the kind, e.g. "Explanation".
func (k SectionKind) Label() string {
	return cases.Title(language.English).String(string(k))
}

// Module is an immutable catalog entry: an ordered sequence of sections.
type Module struct {
	ID          string    `yaml:"id" json:"id"`
	Title       string    `yaml:"title" json:"title"`
	Description string    `yaml:"description" json:"description"`
	XPReward    int       `yaml:"xp_reward" json:"xp_reward"`
	Sections    []Section `yaml:"sections" json:"sections"`
}

// TotalSections returns the fixed number of sections in the module.
func (m Module) TotalSections() int {
	return len(m.Sections)
}

// QuestionCount returns the number of quiz questions across all sections.
func (m Module) QuestionCount() int {
	n := 0
	for _, s := range m.Sections {
		n += len(s.Questions)
	}
	return n
}

// Section is one page of content within a module.
type Section struct {
	ID        string         `yaml:"id" json:"id"`
	Title     string         `yaml:"title" json:"title"`
	Content   string         `yaml:"content" json:"content"`
	Kind      SectionKind    `yaml:"kind" json:"kind"`
	XPReward  int            `yaml:"xp_reward" json:"xp_reward"`
	Questions []QuizQuestion `yaml:"questions,omitempty" json:"questions,omitempty"`
}

// IsQuiz reports whether advancing past the section requires a submitted quiz.
func (s Section) IsQuiz() bool {
	return s.Kind == KindQuiz
}

// QuizQuestion is a single-choice question with a 0-based answer key.
type QuizQuestion struct {
	ID            string   `yaml:"id" json:"id"`
	Prompt        string   `yaml:"prompt" json:"prompt"`
	Options       []string `yaml:"options" json:"options"`
	CorrectAnswer int      `yaml:"correct_answer" json:"correct_answer"`
	Explanation   string   `yaml:"explanation,omitempty" json:"explanation,omitempty"`
}

// Skill groups learning paths (e.g., Web Development).
type Skill struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Difficulty  string `yaml:"difficulty" json:"difficulty"`
	Paths       []Path `yaml:"paths" json:"paths"`
}

// Path is an ordered list of modules that unlock one after another.
type Path struct {
	ID        string   `yaml:"id" json:"id"`
	Title     string   `yaml:"title" json:"title"`
	ModuleIDs []string `yaml:"module_ids" json:"module_ids"`
}

// IsUnlocked reports whether the module at index i of the path is available.
// The first module is always unlocked; later modules require the previous one
// to be completed.
func (p Path) IsUnlocked(i int, completed func(moduleID string) bool) bool {
	if i < 0 || i >= len(p.ModuleIDs) {
		return false
	}
	if i == 0 {
		return true
	}
	return completed(p.ModuleIDs[i-1])
}
