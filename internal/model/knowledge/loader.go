package knowledge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a knowledge table.
type File struct {
	Fallback    string   `yaml:"fallback"`
	Suggestions []string `yaml:"suggestions,omitempty"`
	Topics      []Entry  `yaml:"topics"`
}

// LoadFile reads a YAML knowledge table. A missing fallback keeps DefaultFallback.
func LoadFile(path string) (*Base, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading knowledge file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML knowledge table and validates it.
func Parse(data []byte) (*Base, []string, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidKnowledge, err)
	}
	if f.Fallback == "" {
		f.Fallback = DefaultFallback
	}

	base, err := NewBase(f.Topics, f.Fallback)
	if err != nil {
		return nil, nil, err
	}
	return base, f.Suggestions, nil
}

// Open returns the built-in table when path is empty, otherwise the table
// stored at path. Suggestions fall back to DefaultSuggestions.
func Open(path string) (*Base, []string, error) {
	if path == "" {
		return Default(), DefaultSuggestions(), nil
	}

	base, suggestions, err := LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if len(suggestions) == 0 {
		suggestions = DefaultSuggestions()
	}
	return base, suggestions, nil
}
