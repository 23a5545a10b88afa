package marrow

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// stringField holds text values.
type stringField struct {
	baseField
}

// String returns a text field. Native and data forms are both string.
func String(opts ...FieldOption) Field {
	return stringField{baseField: newBase(opts)}
}

// MinLen restricts string and list fields to a minimum length.
func MinLen(n int) FieldOption {
	return func(b *baseField) { b.minLen = n }
}

// MaxLen restricts string and list fields to a maximum length.
func MaxLen(n int) FieldOption {
	return func(b *baseField) { b.maxLen = n }
}

func (f stringField) Validate(value any) error {
	present, err := f.checkPresence(value)
	if err != nil || !present {
		return err
	}
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if f.minLen > 0 && len(s) < f.minLen {
		return fmt.Errorf("length %d below minimum %d", len(s), f.minLen)
	}
	if f.maxLen > 0 && len(s) > f.maxLen {
		return fmt.Errorf("length %d above maximum %d", len(s), f.maxLen)
	}
	return f.checkChoices(s)
}

func (f stringField) ToNative(_ context.Context, raw any) (any, error) {
	raw = f.withDefault(raw)
	if raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return nil, fmt.Errorf("cannot convert %T to string", raw)
}

func (f stringField) ToData(ctx context.Context, native any) (any, error) {
	return f.ToNative(ctx, native)
}

// intField holds integer values. The native form is int64.
type intField struct {
	baseField
}

// Int returns an integer field. Native form is int64; the data form
// is int64 as well, so JSON numbers survive untouched.
func Int(opts ...FieldOption) Field {
	return intField{baseField: newBase(opts)}
}

// Min restricts numeric fields to a minimum value.
func Min(v float64) FieldOption {
	return func(b *baseField) { b.min = &v }
}

// Max restricts numeric fields to a maximum value.
func Max(v float64) FieldOption {
	return func(b *baseField) { b.max = &v }
}

func (f intField) Validate(value any) error {
	present, err := f.checkPresence(value)
	if err != nil || !present {
		return err
	}
	n, ok := value.(int64)
	if !ok {
		return fmt.Errorf("expected int64, got %T", value)
	}
	if f.min != nil && float64(n) < *f.min {
		return fmt.Errorf("%d below minimum %v", n, *f.min)
	}
	if f.max != nil && float64(n) > *f.max {
		return fmt.Errorf("%d above maximum %v", n, *f.max)
	}
	return f.checkChoices(n)
}

func (f intField) ToNative(_ context.Context, raw any) (any, error) {
	raw = f.withDefault(raw)
	if raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return nil, fmt.Errorf("cannot convert %v to integer without truncation", v)
		}
		return int64(v), nil
	case float32:
		if float64(v) != float64(int64(v)) {
			return nil, fmt.Errorf("cannot convert %v to integer without truncation", v)
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as integer", v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("cannot convert %T to integer", raw)
}

func (f intField) ToData(ctx context.Context, native any) (any, error) {
	return f.ToNative(ctx, native)
}

// floatField holds floating-point values. The native form is float64.
type floatField struct {
	baseField
}

// Float returns a floating-point field.
func Float(opts ...FieldOption) Field {
	return floatField{baseField: newBase(opts)}
}

func (f floatField) Validate(value any) error {
	present, err := f.checkPresence(value)
	if err != nil || !present {
		return err
	}
	n, ok := value.(float64)
	if !ok {
		return fmt.Errorf("expected float64, got %T", value)
	}
	if f.min != nil && n < *f.min {
		return fmt.Errorf("%v below minimum %v", n, *f.min)
	}
	if f.max != nil && n > *f.max {
		return fmt.Errorf("%v above maximum %v", n, *f.max)
	}
	return f.checkChoices(n)
}

func (f floatField) ToNative(_ context.Context, raw any) (any, error) {
	raw = f.withDefault(raw)
	if raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as float", v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("cannot convert %T to float", raw)
}

func (f floatField) ToData(ctx context.Context, native any) (any, error) {
	return f.ToNative(ctx, native)
}

// boolField holds boolean values.
type boolField struct {
	baseField
}

// Bool returns a boolean field.
func Bool(opts ...FieldOption) Field {
	return boolField{baseField: newBase(opts)}
}

func (f boolField) Validate(value any) error {
	present, err := f.checkPresence(value)
	if err != nil || !present {
		return err
	}
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

func (f boolField) ToNative(_ context.Context, raw any) (any, error) {
	raw = f.withDefault(raw)
	if raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as bool", v)
		}
		return b, nil
	}
	return nil, fmt.Errorf("cannot convert %T to bool", raw)
}

func (f boolField) ToData(ctx context.Context, native any) (any, error) {
	return f.ToNative(ctx, native)
}

// timeField holds timestamps. Native form is time.Time; data form is
// an RFC 3339 string.
type timeField struct {
	baseField
}

// Time returns a timestamp field.
func Time(opts ...FieldOption) Field {
	return timeField{baseField: newBase(opts)}
}

func (f timeField) Validate(value any) error {
	present, err := f.checkPresence(value)
	if err != nil || !present {
		return err
	}
	if _, ok := value.(time.Time); !ok {
		return fmt.Errorf("expected time.Time, got %T", value)
	}
	return nil
}

func (f timeField) ToNative(_ context.Context, raw any) (any, error) {
	raw = f.withDefault(raw)
	if raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as RFC 3339 timestamp", v)
		}
		return t, nil
	}
	return nil, fmt.Errorf("cannot convert %T to timestamp", raw)
}

func (f timeField) ToData(ctx context.Context, native any) (any, error) {
	v, err := f.ToNative(ctx, native)
	if err != nil || v == nil {
		return nil, err
	}
	return v.(time.Time).Format(time.RFC3339Nano), nil
}

// listField holds a homogeneous list of another field kind.
type listField struct {
	baseField
	elem Field
}

// List returns a list field whose elements convert and validate
// through elem.
func List(elem Field, opts ...FieldOption) Field {
	return listField{baseField: newBase(opts), elem: elem}
}

func (f listField) Validate(value any) error {
	present, err := f.checkPresence(value)
	if err != nil || !present {
		return err
	}
	items, ok := value.([]any)
	if !ok {
		return fmt.Errorf("expected list, got %T", value)
	}
	if f.minLen > 0 && len(items) < f.minLen {
		return fmt.Errorf("length %d below minimum %d", len(items), f.minLen)
	}
	if f.maxLen > 0 && len(items) > f.maxLen {
		return fmt.Errorf("length %d above maximum %d", len(items), f.maxLen)
	}
	for i, item := range items {
		if err := f.elem.Validate(item); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func (f listField) ToNative(ctx context.Context, raw any) (any, error) {
	return f.convert(ctx, raw, f.elem.ToNative)
}

func (f listField) ToData(ctx context.Context, native any) (any, error) {
	return f.convert(ctx, native, f.elem.ToData)
}

func (f listField) convert(ctx context.Context, raw any, conv func(context.Context, any) (any, error)) (any, error) {
	raw = f.withDefault(raw)
	if raw == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("cannot convert %T to list", raw)
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v, err := conv(ctx, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// nestedField embeds a model built from another schema.
type nestedField struct {
	baseField
	schema *Schema
}

// Nested returns a model-valued field. The native form is *Model; the
// data form is the nested model's schema-shaped dump.
func Nested(schema *Schema, opts ...FieldOption) Field {
	return nestedField{baseField: newBase(opts), schema: schema}
}

func (f nestedField) Validate(value any) error {
	present, err := f.checkPresence(value)
	if err != nil || !present {
		return err
	}
	m, ok := value.(*Model)
	if !ok {
		return fmt.Errorf("expected *Model, got %T", value)
	}
	return m.Validate()
}

func (f nestedField) ToNative(ctx context.Context, raw any) (any, error) {
	raw = f.withDefault(raw)
	if raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case *Model:
		return v, nil
	case map[string]any:
		m := New(f.schema)
		if err := m.ImportData(ctx, v); err != nil {
			return nil, err
		}
		return m, nil
	case *Mapping:
		m := New(f.schema)
		if err := m.ImportData(ctx, v.Value()); err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, fmt.Errorf("cannot convert %T to model %q", raw, f.schema.Name())
}

func (f nestedField) ToData(ctx context.Context, native any) (any, error) {
	v, err := f.ToNative(ctx, native)
	if err != nil || v == nil {
		return nil, err
	}
	return v.(*Model).ExportData(ctx, false)
}

// secretField holds sensitive values hashed on import.
type secretField struct {
	baseField
	algo HashAlgo
}

// Secret returns a sensitive field. Plaintext is hashed through the
// named algorithm on import, and the field defaults to ProjectNever so
// the stored hash leaks into neither projected view. ExportData dumps
// still carry the hash for storage collaborators.
func Secret(algo HashAlgo, opts ...FieldOption) Field {
	base := newBase(opts)
	if !base.projectionSet {
		base.projection = ProjectNever
	}
	return secretField{baseField: base, algo: algo}
}

func (f secretField) Validate(value any) error {
	present, err := f.checkPresence(value)
	if err != nil || !present {
		return err
	}
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

func (f secretField) ToNative(_ context.Context, raw any) (any, error) {
	raw = f.withDefault(raw)
	if raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("cannot convert %T to secret", raw)
	}
	if isHashed(s) {
		return s, nil
	}
	hasher, ok := defaultHashers[f.algo]
	if !ok {
		return nil, fmt.Errorf("%w for algorithm %q", ErrMissingHasher, f.algo)
	}
	return hasher.Hash([]byte(s))
}

// ToData passes the stored value through unchanged. Hashing happens on
// import; re-hashing here would corrupt deterministic (sha) hashes,
// which carry no detectable prefix.
func (f secretField) ToData(_ context.Context, native any) (any, error) {
	native = f.withDefault(native)
	if native == nil {
		return nil, nil
	}
	s, ok := native.(string)
	if !ok {
		return nil, fmt.Errorf("cannot convert %T to secret", native)
	}
	return s, nil
}

// isHashed detects already-hashed values so re-importing exported data
// does not double-hash. Only salted formats carry a detectable prefix.
func isHashed(s string) bool {
	return strings.HasPrefix(s, "$argon2id$") || strings.HasPrefix(s, "$2")
}
