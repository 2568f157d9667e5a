package curriculum

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const (
	defaultModuleTitle       = "Module"
	defaultModuleDescription = "Learn new programming concepts"
	defaultModuleXP          = 100
)

var (
	// ErrInvalidModule is wrapped by every module validation failure.
	ErrInvalidModule = errors.New("invalid module")
	// ErrInvalidSkill is wrapped by every skill validation failure.
	ErrInvalidSkill = errors.New("invalid skill")
)

// Validate checks the catalog data contracts of a module.
func (m Module) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidModule)
	}
	if len(m.Sections) == 0 {
		return fmt.Errorf("%w: %s has no sections", ErrInvalidModule, m.ID)
	}
	if m.XPReward < 0 {
		return fmt.Errorf("%w: %s has negative xp_reward", ErrInvalidModule, m.ID)
	}

	seen := make(map[string]bool, len(m.Sections))
	for i, s := range m.Sections {
		if s.ID == "" {
			return fmt.Errorf("%w: %s section %d has no id", ErrInvalidModule, m.ID, i)
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: %s has duplicate section %q", ErrInvalidModule, m.ID, s.ID)
		}
		seen[s.ID] = true

		if !s.Kind.Valid() {
			return fmt.Errorf("%w: section %q has unknown kind %q", ErrInvalidModule, s.ID, s.Kind)
		}
		if s.XPReward < 0 {
			return fmt.Errorf("%w: section %q has negative xp_reward", ErrInvalidModule, s.ID)
		}
		if !s.IsQuiz() && len(s.Questions) > 0 {
			return fmt.Errorf("%w: %s section %q carries questions", ErrInvalidModule, s.Kind, s.ID)
		}
		if err := validateQuestions(s); err != nil {
			return err
		}
	}
	return nil
}

func validateQuestions(s Section) error {
	ids := make(map[string]bool, len(s.Questions))
	for _, q := range s.Questions {
		if q.ID == "" {
			return fmt.Errorf("%w: section %q has a question without id", ErrInvalidModule, s.ID)
		}
		if ids[q.ID] {
			return fmt.Errorf("%w: section %q has duplicate question %q", ErrInvalidModule, s.ID, q.ID)
		}
		ids[q.ID] = true

		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %q needs at least 2 options", ErrInvalidModule, q.ID)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("%w: question %q correct_answer %d out of range [0,%d)",
				ErrInvalidModule, q.ID, q.CorrectAnswer, len(q.Options))
		}
	}
	return nil
}

// Normalize fills the catalog defaults for fields a content file left empty.
func (m Module) Normalize() Module {
	if m.Title == "" {
		m.Title = defaultModuleTitle
	}
	if m.Description == "" {
		m.Description = defaultModuleDescription
	}
	if m.XPReward == 0 {
		m.XPReward = defaultModuleXP
	}
	return m
}

// Fingerprint returns a stable content hash of the module, used as a cache tag
// and HTTP ETag.
func (m Module) Fingerprint() string {
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:16])
}
