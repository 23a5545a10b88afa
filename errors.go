package marrow

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrSchema indicates an invalid schema declaration, such as a
	// field and an export sharing a name. Schema errors are
	// programming errors surfaced at Build time, never at runtime.
	ErrSchema = errors.New("invalid schema")

	// ErrImport indicates ImportData received a payload the schema
	// cannot accept.
	ErrImport = errors.New("import failed")

	// ErrValidation indicates one or more fields failed validation.
	ErrValidation = errors.New("validation failed")

	// ErrConversion indicates a field conversion or export
	// computation failed during serialization or import.
	ErrConversion = errors.New("conversion failed")

	// ErrMissingHasher indicates a secret field names an unregistered
	// hash algorithm.
	ErrMissingHasher = errors.New("missing hasher")
)

// SchemaError reports an invalid schema declaration.
type SchemaError struct {
	Schema string // Schema name
	Name   string // Offending member name, if any
	Reason string // Human-readable cause
}

func (e *SchemaError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("schema %q: %s: %s", e.Schema, e.Name, e.Reason)
	}
	return fmt.Sprintf("schema %q: %s", e.Schema, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// ImportError reports a rejected import payload. Under strict
// schemas, Keys lists the payload keys no field matched.
type ImportError struct {
	Schema string
	Keys   []string
	Reason string
}

func (e *ImportError) Error() string {
	if len(e.Keys) > 0 {
		return fmt.Sprintf("import into %q: %s: %s", e.Schema, e.Reason, strings.Join(e.Keys, ", "))
	}
	return fmt.Sprintf("import into %q: %s", e.Schema, e.Reason)
}

func (e *ImportError) Unwrap() error {
	return ErrImport
}

// ValidationError aggregates per-field validation failures. Every
// invalid field is reported, not just the first encountered; Names
// holds failing field names in schema declaration order and Fields
// maps each name to its failure.
type ValidationError struct {
	Schema string
	Names  []string
	Fields map[string]error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Names))
	for _, name := range e.Names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Fields[name]))
	}
	return fmt.Sprintf("validation of %q failed: %s", e.Schema, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConversionError reports a failed field conversion or export
// computation. The whole serialization call is aborted; no partial
// mapping is returned.
type ConversionError struct {
	Field string // Field or export name
	Op    string // "to_native", "to_data", or "export"
	Cause error
}

func (e *ConversionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Field, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Op, e.Field)
}

func (e *ConversionError) Unwrap() error {
	return ErrConversion
}

// newSchemaError creates a SchemaError for declaration failures.
func newSchemaError(schema, name, reason string) error {
	return &SchemaError{Schema: schema, Name: name, Reason: reason}
}

// newConversionError creates a ConversionError for a failed unit of work.
func newConversionError(op, field string, cause error) error {
	return &ConversionError{Field: field, Op: op, Cause: cause}
}
