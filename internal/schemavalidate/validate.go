// Package schemavalidate compiles embedded JSON schemas once and reports
// schema violations as path-qualified validation errors.
package schemavalidate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fulmenhq/gofulmen/schema"
	"gopkg.in/yaml.v3"
)

// Validation errors
var (
	// ErrSchemaNotFound indicates the embedded schema is empty.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrValidationFailed indicates the document failed schema validation.
	ErrValidationFailed = errors.New("schema validation failed")
)

// ValidationError represents a single validation issue.
type ValidationError struct {
	// Path is the JSON pointer to the problematic field (e.g., "/source/uris").
	Path string

	// Message describes the validation failure.
	Message string
}

// Error implements error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(e)))
	for i, err := range e {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error type.
func (e ValidationErrors) Unwrap() error {
	return ErrValidationFailed
}

// Schema is a lazily compiled embedded schema.
//
// The validator is compiled on first use and cached; Schema is safe for
// concurrent use.
type Schema struct {
	name string
	raw  []byte

	once      sync.Once
	validator *schema.Validator
	err       error
}

// New returns a Schema for the embedded document raw. name is used in
// error messages.
func New(name string, raw []byte) *Schema {
	return &Schema{name: name, raw: raw}
}

// ValidateJSON checks raw JSON data against the schema.
//
// Returns nil if validation succeeds, or ValidationErrors describing every
// error-severity diagnostic.
func (s *Schema) ValidateJSON(data []byte) error {
	v, err := s.compiled()
	if err != nil {
		return err
	}

	diags, err := v.ValidateJSON(data)
	if err != nil {
		return fmt.Errorf("%s schema validation error: %w", s.name, err)
	}
	if len(diags) == 0 {
		return nil
	}

	var errs ValidationErrors
	for _, d := range diags {
		// Only include errors, not warnings
		if d.Severity == schema.SeverityError {
			errs = append(errs, ValidationError{
				Path:    d.Pointer,
				Message: d.Message,
			})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateValue marshals v to JSON and validates it.
func (s *Schema) ValidateValue(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize %s for validation: %w", s.name, err)
	}
	return s.ValidateJSON(data)
}

func (s *Schema) compiled() (*schema.Validator, error) {
	s.once.Do(func() {
		if len(s.raw) == 0 {
			s.err = fmt.Errorf("%w: embedded %s schema is empty", ErrSchemaNotFound, s.name)
			return
		}
		s.validator, s.err = schema.NewValidator(s.raw)
		if s.err != nil {
			s.err = fmt.Errorf("failed to compile %s schema: %w", s.name, s.err)
		}
	})
	return s.validator, s.err
}

// YAMLToJSON converts YAML (a superset of JSON) into JSON for validation.
func YAMLToJSON(data []byte) ([]byte, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to JSON: %w", err)
	}
	return jsonData, nil
}
