package schema

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Override adds columns to a table. Built-in columns cannot be removed
// because the cross-sheet rules index them directly.
type Override struct {
	Required []string `yaml:"required"`
	Optional []string `yaml:"optional"`
}

// OverrideFile is the on-disk shape of a schema override:
//
//	tables:
//	  Entities:
//	    required: [Floor]
//	    optional: [Notes]
type OverrideFile struct {
	Tables map[string]Override `yaml:"tables"`
}

// LoadFile reads a YAML override file and applies it to the default schema.
// An empty path returns the default schema.
func LoadFile(path string) (Schema, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("read schema file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML override data and applies it to the default schema.
func Parse(data []byte) (Schema, error) {
	var file OverrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Schema{}, fmt.Errorf("parse schema file: %w", err)
	}

	return Default().WithOverrides(file.Tables)
}

// WithOverrides returns a copy of s with extra columns added per table.
// A column promoted to required is removed from the optional list.
func (s Schema) WithOverrides(overrides map[string]Override) (Schema, error) {
	var unknown []string
	for name := range overrides {
		if _, ok := s.Get(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return Schema{}, fmt.Errorf("unknown tables in schema override: %s", strings.Join(unknown, ", "))
	}

	out := Schema{tables: s.Tables()}
	for i, t := range out.tables {
		o, ok := overrides[t.Name]
		if !ok {
			continue
		}
		for _, h := range o.Required {
			h = strings.TrimSpace(h)
			if h == "" || slices.Contains(t.Required, h) {
				continue
			}
			t.Required = append(t.Required, h)
			t.Optional = slices.DeleteFunc(t.Optional, func(x string) bool { return x == h })
		}
		for _, h := range o.Optional {
			h = strings.TrimSpace(h)
			if h == "" || slices.Contains(t.Required, h) || slices.Contains(t.Optional, h) {
				continue
			}
			t.Optional = append(t.Optional, h)
		}
		out.tables[i] = t
	}
	return out, nil
}
