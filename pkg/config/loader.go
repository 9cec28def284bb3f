package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-relations/pkg/actions"
	"github.com/goliatone/go-relations/pkg/fields"
	"github.com/goliatone/go-relations/pkg/forms"
	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/relation"
	"github.com/goliatone/go-relations/pkg/render"
	"github.com/goliatone/go-relations/pkg/validation"
)

// Relation is a relation declared in a configuration file.
type Relation struct {
	Descriptor relation.Descriptor
	Registry   *Registry
	Source     string
}

type documentFile struct {
	Relations []relationFile `json:"relations" yaml:"relations" validate:"required,min=1,dive"`
}

type relationFile struct {
	Prefix  string              `json:"prefix" yaml:"prefix" validate:"required"`
	Primary string              `json:"primary" yaml:"primary" validate:"required"`
	Related []string            `json:"related" yaml:"related" validate:"required,min=1,dive,required"`
	Mixed   bool                `json:"mixed" yaml:"mixed"`
	Types   map[string]typeFile `json:"types" yaml:"types" validate:"dive"`
}

type typeFile struct {
	Label           string            `json:"label" yaml:"label"`
	ListFields      []string          `json:"list_fields" yaml:"list_fields"`
	PostListFields  []string          `json:"post_list_fields" yaml:"post_list_fields"`
	ListActions     []string          `json:"list_actions" yaml:"list_actions"`
	PostListActions []string          `json:"post_list_actions" yaml:"post_list_actions"`
	FormFields      []string          `json:"form_fields" yaml:"form_fields"`
	FormButtons     []string          `json:"form_buttons" yaml:"form_buttons"`
	ListFormat      string            `json:"list_format" yaml:"list_format" validate:"omitempty,printascii"`
	PostListFormat  string            `json:"post_list_format" yaml:"post_list_format" validate:"omitempty,printascii"`
	ListQuery       map[string]any    `json:"list_query" yaml:"list_query"`
	Validation      map[string]string `json:"validation" yaml:"validation"`
}

var (
	structValidatorOnce sync.Once
	structValidator     *validator.Validate
)

func validate() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New()
	})
	return structValidator
}

// LoadFS walks fsys and builds every relation declared in JSON or YAML
// files. Relation prefixes must be unique across files.
func LoadFS(fsys fs.FS) ([]Relation, error) {
	if fsys == nil {
		return nil, errors.New("config: filesystem is required")
	}

	var out []Relation
	seen := make(map[string]string)

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isConfigFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		relations, err := Load(data, path)
		if err != nil {
			return err
		}
		for _, rel := range relations {
			key := rel.Descriptor.Name()
			if other, exists := seen[key]; exists {
				return fmt.Errorf("config: relation %s declared in %s and %s", rel.Descriptor, other, path)
			}
			seen[key] = path
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Load parses a single JSON or YAML document. source names the document in
// errors.
func Load(data []byte, source string) ([]Relation, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}
	if err := validate().Struct(doc); err != nil {
		return nil, fmt.Errorf("config: %s: %w", source, err)
	}

	out := make([]Relation, 0, len(doc.Relations))
	for idx, raw := range doc.Relations {
		rel, err := buildRelation(raw, source)
		if err != nil {
			return nil, fmt.Errorf("config: %s: relation %d: %w", source, idx, err)
		}
		out = append(out, rel)
	}
	return out, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("config: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return documentFile{}, fmt.Errorf("config: parse %s: invalid JSON or YAML", source)
}

func buildRelation(raw relationFile, source string) (Relation, error) {
	var (
		descriptor relation.Descriptor
		err        error
	)
	if raw.Mixed {
		descriptor, err = relation.Mixed(raw.Prefix, raw.Primary, raw.Related...)
	} else {
		if len(raw.Related) != 1 {
			return Relation{}, fmt.Errorf("single relation needs exactly one related type, got %d (set mixed: true)", len(raw.Related))
		}
		descriptor, err = relation.Single(raw.Prefix, raw.Primary, raw.Related[0])
	}
	if err != nil {
		return Relation{}, err
	}

	registry, err := NewRegistry(descriptor.Related()...)
	if err != nil {
		return Relation{}, err
	}

	// default first so per type entries are applied on top of it
	names := make([]string, 0, len(raw.Types))
	for name := range raw.Types {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == Default || names[j] == Default {
			return names[i] == Default
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		if err := applyType(registry, name, raw.Types[name]); err != nil {
			return Relation{}, fmt.Errorf("type %q: %w", name, err)
		}
	}

	return Relation{Descriptor: descriptor, Registry: registry, Source: source}, nil
}

func applyType(registry *Registry, name string, raw typeFile) error {
	if raw.Label != "" && name != Default {
		if err := registry.SetTypeLabel(name, raw.Label); err != nil {
			return err
		}
	}
	if raw.ListFields != nil {
		specs, err := fields.ParseAll(raw.ListFields)
		if err != nil {
			return err
		}
		if err := registry.SetListFields(name, specs...); err != nil {
			return err
		}
	}
	if raw.PostListFields != nil {
		specs, err := fields.ParseAll(raw.PostListFields)
		if err != nil {
			return err
		}
		if err := registry.SetPostListFields(name, specs...); err != nil {
			return err
		}
	}
	if raw.ListActions != nil {
		specs, err := actions.ParseAll(raw.ListActions)
		if err != nil {
			return err
		}
		if err := registry.SetListActions(name, specs...); err != nil {
			return err
		}
	}
	if raw.PostListActions != nil {
		specs, err := actions.ParseAll(raw.PostListActions)
		if err != nil {
			return err
		}
		if err := registry.SetPostListActions(name, specs...); err != nil {
			return err
		}
	}
	if raw.FormFields != nil {
		specs, err := forms.ParseFields(raw.FormFields)
		if err != nil {
			return err
		}
		if err := registry.SetFormFields(name, specs...); err != nil {
			return err
		}
	}
	if raw.FormButtons != nil {
		specs, err := forms.ParseButtons(raw.FormButtons)
		if err != nil {
			return err
		}
		if err := registry.SetFormButtons(name, specs...); err != nil {
			return err
		}
	}
	if raw.ListFormat != "" {
		if err := registry.SetListFormat(name, render.Named(raw.ListFormat)); err != nil {
			return err
		}
	}
	if raw.PostListFormat != "" {
		if err := registry.SetPostListFormat(name, render.Named(raw.PostListFormat)); err != nil {
			return err
		}
	}
	if len(raw.ListQuery) > 0 {
		if err := registry.SetListQuery(name, record.Criteria(raw.ListQuery)); err != nil {
			return err
		}
	}
	if len(raw.Validation) > 0 {
		if err := registry.SetValidation(name, validation.Tags(raw.Validation)); err != nil {
			return err
		}
	}
	return nil
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
