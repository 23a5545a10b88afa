package marrow

import (
	"context"
	"fmt"
	"reflect"
)

// Projection governs whether a field appears in projected views
// (ToData, ToNative) when its converted value is empty.
type Projection int8

const (
	// ProjectIfPresent omits the field when its converted value is
	// empty. This is the default: omission, not null, encodes absence.
	ProjectIfPresent Projection = iota

	// ProjectAlways includes the field even when its converted value
	// is empty, as an explicit empty/null.
	ProjectAlways

	// ProjectNever excludes the field from projected views entirely.
	// The field still appears in ExportData dumps.
	ProjectNever
)

// String returns the tag spelling of the projection policy.
func (p Projection) String() string {
	switch p {
	case ProjectAlways:
		return "always"
	case ProjectNever:
		return "never"
	default:
		return "if-present"
	}
}

// ParseProjection maps a tag spelling to a Projection.
func ParseProjection(s string) (Projection, bool) {
	switch s {
	case "if-present", "":
		return ProjectIfPresent, true
	case "always":
		return ProjectAlways, true
	case "never":
		return ProjectNever, true
	}
	return ProjectIfPresent, false
}

// Field is a typed leaf descriptor providing validation and
// bidirectional conversion for one named attribute.
//
// Implementations must be immutable: a Field value is shared by every
// schema that declares it and every concurrent serialization of those
// schemas. Conversions take a context so implementations may suspend
// on I/O; pure conversions ignore it.
type Field interface {
	// Validate checks a stored value. Absent data is passed as nil.
	Validate(value any) error

	// ToNative converts a raw value to its in-process native form.
	ToNative(ctx context.Context, raw any) (any, error)

	// ToData converts a native value to its transport-primitive form.
	ToData(ctx context.Context, native any) (any, error)

	// Projection returns the field's projection policy.
	Projection() Projection
}

// FieldOption configures a field constructor.
type FieldOption func(*baseField)

// Required marks the field as failing validation when absent.
func Required() FieldOption {
	return func(b *baseField) { b.required = true }
}

// Default supplies a value used when no data was imported for the
// field. Conversions see the default in place of nil.
func Default(v any) FieldOption {
	return func(b *baseField) { b.def = v }
}

// Project sets the field's projection policy.
func Project(p Projection) FieldOption {
	return func(b *baseField) {
		b.projection = p
		b.projectionSet = true
	}
}

// Choices restricts the field to one of the given values.
func Choices(values ...any) FieldOption {
	return func(b *baseField) { b.choices = values }
}

// baseField carries the configuration common to every field kind.
type baseField struct {
	required       bool
	def            any
	projection     Projection
	projectionSet  bool
	choices        []any
	minLen, maxLen int
	min, max       *float64
}

func newBase(opts []FieldOption) baseField {
	var b baseField
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b baseField) Projection() Projection {
	return b.projection
}

// withDefault substitutes the configured default for absent data.
func (b baseField) withDefault(v any) any {
	if v == nil && b.def != nil {
		return b.def
	}
	return v
}

// checkPresence enforces the required flag. It reports whether the
// caller has a value to validate further.
func (b baseField) checkPresence(v any) (bool, error) {
	if v == nil {
		if b.required && b.def == nil {
			return false, fmt.Errorf("required")
		}
		return false, nil
	}
	return true, nil
}

// checkChoices enforces the Choices restriction.
func (b baseField) checkChoices(v any) error {
	if len(b.choices) == 0 {
		return nil
	}
	for _, c := range b.choices {
		if reflect.DeepEqual(c, v) {
			return nil
		}
	}
	return fmt.Errorf("value %v not in choices", v)
}

// fieldDef binds a Field to its name within an owning schema, so a
// field can be addressed without the caller repeating the name.
type fieldDef struct {
	name   string
	schema string
	field  Field
}

// exportDef binds an ExportFunc to its declared name.
type exportDef struct {
	name string
	fn   ExportFunc
}

// isEmpty reports whether a converted value counts as empty for
// projection purposes: nil, zero scalars, empty strings, and empty
// containers.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if m, ok := v.(*Mapping); ok {
		return m == nil || m.Len() == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
