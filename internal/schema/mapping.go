package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the mapping as a JSON audit artifact. The file can be edited
// by hand and fed back through Load to override resolution for a rerun.
func (m *Mapping) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create mapping directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mapping: %w", err)
	}
	return nil
}

// LoadMapping reads a previously saved (or hand-edited) mapping artifact.
// Fields loaded this way are marked manual so the audit trail distinguishes
// them from resolver output.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping %s: %w", path, err)
	}

	mapping := &Mapping{}
	if err := json.Unmarshal(data, mapping); err != nil {
		return nil, fmt.Errorf("failed to parse mapping %s: %w", path, err)
	}
	if mapping.Fields == nil {
		mapping.Fields = make(map[string]FieldMapping)
	}

	for name, fm := range mapping.Fields {
		if fm.Method == "" {
			fm.Method = MethodManual
			mapping.Fields[name] = fm
		}
	}

	return mapping, nil
}
