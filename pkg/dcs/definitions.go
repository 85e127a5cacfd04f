package dcs

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"simlink/pkg/netfunc"
)

// DefinitionFile is a YAML document of function definitions for one interface.
type DefinitionFile struct {
	Interface string               `yaml:"interface"`
	Functions []netfunc.Definition `yaml:"functions"`
}

// LoadDefinitionsFile reads a definition file.
func LoadDefinitionsFile(path string) (*DefinitionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions: %w", err)
	}
	var f DefinitionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse definitions %s: %w", path, err)
	}
	return &f, nil
}

// SaveDefinitionsFile writes f to path.
func SaveDefinitionsFile(path string, f *DefinitionFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal definitions: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create definitions directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write definitions: %w", err)
	}
	return nil
}

// Describe returns the definitions of fs in order.
func Describe(fs []netfunc.Function) []netfunc.Definition {
	out := make([]netfunc.Definition, len(fs))
	for i, f := range fs {
		out[i] = netfunc.Describe(f)
	}
	return out
}
