// Package validate implements the declarative input gate that runs in front
// of every schema-validated endpoint.  A Schema is a data-driven rule table:
// an ordered list of fields, each with an ordered rule chain.  Request
// bodies are checked in two passes: first any field outside the schema's
// closed name set rejects the whole request, then every schema field is
// evaluated and the complete per-field error list is returned in one pass.
package validate

import (
	"fmt"
	"sort"
)

// FieldError describes the first failing rule for one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Rule is a single predicate in a field's chain.  Apply receives the raw
// decoded JSON value (string, json.Number, bool, nil, ...).
type Rule struct {
	Apply   func(v any) bool
	Message string
}

// Field binds a name to its ordered rule chain.
type Field struct {
	Name  string
	Rules []Rule
}

// Schema is the closed field set for one endpoint.
type Schema struct {
	Name   string
	Fields []Field
}

func (s *Schema) allowed() map[string]bool {
	set := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		set[f.Name] = true
	}
	return set
}

// CheckUnexpected returns an error naming a field outside the schema's
// closed set, or nil when every present field is declared.  This check runs
// before any rule so unknown input never reaches validation or business
// logic.  Keys are inspected in sorted order to keep the reported field
// deterministic.
func (s *Schema) CheckUnexpected(body map[string]any) error {
	allowed := s.allowed()
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !allowed[k] {
			return fmt.Errorf("unexpected field: %s", k)
		}
	}
	return nil
}

// Validate runs every field's rule chain in declared order.  The first
// failing rule per field contributes one FieldError; all fields are
// evaluated so the caller receives the complete list in one round trip.
func (s *Schema) Validate(body map[string]any) []FieldError {
	var errs []FieldError
	for _, f := range s.Fields {
		v := body[f.Name]
		for _, r := range f.Rules {
			if !r.Apply(v) {
				errs = append(errs, FieldError{Field: f.Name, Message: r.Message})
				break
			}
		}
	}
	return errs
}
