package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// Search returns the export of every movie, channel and series whose name
// starts with a match of pattern, in that order.
func (s *Session) Search(pattern string, ignoreCase bool) ([]map[string]any, error) {
	expr := "^(?:" + pattern + ")"
	if ignoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling search pattern: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]map[string]any, 0)
	for _, m := range s.movies {
		if re.MatchString(m.Name) {
			results = append(results, m.Export())
		}
	}
	for _, c := range s.channels {
		if re.MatchString(c.Name) {
			results = append(results, c.Export())
		}
	}
	for _, serie := range s.series {
		if re.MatchString(serie.Name) {
			results = append(results, serie.Export())
		}
	}
	return results, nil
}

// SearchJSON returns the Search result as an indented JSON array.
func (s *Session) SearchJSON(pattern string, ignoreCase bool) ([]byte, error) {
	results, err := s.Search(pattern, ignoreCase)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return nil, fmt.Errorf("encoding search results: %w", err)
	}
	return buf.Bytes(), nil
}
