package curriculum

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

//go:embed schema/*.json
var schemaFS embed.FS

var (
	moduleSchema = mustSchema("schema/module.schema.json")
	skillSchema  = mustSchema("schema/skill.schema.json")
)

func mustSchema(name string) *gojsonschema.Schema {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("curriculum: read %s: %v", name, err))
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(fmt.Sprintf("curriculum: compile %s: %v", name, err))
	}
	return s
}

// LoadBuiltin loads the catalog shipped with the binary.
func LoadBuiltin() (*Catalog, error) {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("open builtin catalog: %w", err)
	}
	return LoadFS(sub)
}

// LoadDir loads every catalog file under rootDir.
func LoadDir(rootDir string) (*Catalog, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("loading catalog: %s is not a directory", rootDir)
	}
	return LoadFS(os.DirFS(rootDir))
}

// LoadFS walks fsys and loads module files (*.yaml, *.yml) and skill files
// (*.skill.yaml). Files that are not valid YAML or carry no id are skipped;
// files that fail schema or contract validation abort the load.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	c, _ := NewCatalog()

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}

		switch {
		case isSkillFile(p):
			return loadSkill(fsys, p, c)
		case strings.HasSuffix(p, ".yaml") || strings.HasSuffix(p, ".yml"):
			return loadModule(fsys, p, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	slog.Info("catalog loaded", "modules", c.Len(), "skills", len(c.Skills()))
	return c, nil
}

func isSkillFile(p string) bool {
	return strings.HasSuffix(p, ".skill.yaml") || strings.HasSuffix(p, ".skill.yml")
}

func loadModule(fsys fs.FS, p string, c *Catalog) error {
	data, ok, err := readDocument(fsys, p, moduleSchema, ErrInvalidModule)
	if err != nil || !ok {
		return err
	}

	var m Module
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode %s: %w", p, err)
	}
	if err := c.AddModule(m); err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	return nil
}

func loadSkill(fsys fs.FS, p string, c *Catalog) error {
	data, ok, err := readDocument(fsys, p, skillSchema, ErrInvalidSkill)
	if err != nil || !ok {
		return err
	}

	var s Skill
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode %s: %w", p, err)
	}
	if err := c.AddSkill(s); err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	return nil
}

// readDocument reads a YAML file and validates it against schema. ok is false
// when the file should be skipped.
func readDocument(fsys fs.FS, p string, schema *gojsonschema.Schema, invalid error) ([]byte, bool, error) {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, false, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		slog.Warn("skipping invalid catalog YAML", "path", p, "error", err)
		return nil, false, nil
	}
	if id, _ := doc["id"].(string); id == "" {
		return nil, false, nil // Not a catalog document
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, false, fmt.Errorf("validate %s: %w", p, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, false, fmt.Errorf("%w: %s: %s", invalid, path.Base(p), strings.Join(msgs, "; "))
	}
	return data, true, nil
}
