// Package features builds model input vectors aligned to a feature schema.
package features

import (
	"encoding/json"
	"fmt"
	"os"
)

// Schema is the ordered list of columns a model expects. It is read-only
// after construction and safe to share between concurrent runs.
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema builds a schema from ordered column names.
func NewSchema(names []string) (*Schema, error) {
	if len(names) == 0 {
		return nil, ErrEmptySchema
	}
	s := &Schema{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	copy(s.names, names)
	for i, n := range s.names {
		if _, dup := s.index[n]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, n)
		}
		s.index[n] = i
	}
	return s, nil
}

// ParseSchema decodes a JSON array of column names.
func ParseSchema(data []byte) (*Schema, error) {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadSchema, err)
	}
	return NewSchema(names)
}

// LoadSchema reads a JSON column list artifact from path.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadSchema, err)
	}
	return ParseSchema(data)
}

// Has reports whether the schema declares name.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Index returns the position of name, or -1.
func (s *Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.names) }

// Names returns a copy of the ordered column names.
func (s *Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
