// Package schemas validates profile and configuration documents against JSON Schemas.
package schemas

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON Schema, safe for concurrent use.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// Compile parses a schema document. name is used in error messages.
func Compile(name, content string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, &CompileError{Schema: name, Cause: err}
	}
	return &Schema{name: name, schema: s}, nil
}

// MustCompile is Compile for embedded schemas; it panics on error.
func MustCompile(name, content string) *Schema {
	s, err := Compile(name, content)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a JSON document. Violations are reported as a *ValidationError
// listing every offending field, sorted by field path.
func (s *Schema) Validate(doc []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%s: document is not valid JSON: %w", s.name, err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Schema: s.name, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	sort.SliceStable(ve.Errors, func(i, j int) bool { return ve.Errors[i].Field < ve.Errors[j].Field })
	return ve
}

// ValidateJSONString compiles schemaContent and validates jsonContent against it.
func ValidateJSONString(schemaContent, jsonContent string) error {
	s, err := Compile("(inline schema)", schemaContent)
	if err != nil {
		return err
	}
	return s.Validate([]byte(jsonContent))
}

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError is a single violation at a field path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	parts := make([]string, len(ve.Errors))
	for i, e := range ve.Errors {
		parts[i] = e.Field + ": " + e.Message
	}
	return fmt.Sprintf("%s: %d schema violation(s): %s", ve.Schema, len(ve.Errors), strings.Join(parts, "; "))
}

// Fields returns the offending field paths.
func (ve *ValidationError) Fields() []string {
	fields := make([]string, len(ve.Errors))
	for i, e := range ve.Errors {
		fields[i] = e.Field
	}
	return fields
}

// CompileError means a schema document could not be compiled.
type CompileError struct {
	Schema string
	Cause  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile schema %s: %v", e.Schema, e.Cause)
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}
