package marrow

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"
)

// Model holds imported, converted field data for one instance of a
// schema. A new model starts empty; data arrives through ImportData
// and leaves through the serialized views.
//
// A Model is not internally locked. Concurrent serializations of the
// same model are safe; serializing while another goroutine imports
// into the same model is the caller's responsibility to prevent.
type Model struct {
	schema *Schema
	data   map[string]any
}

// Item is one present field entry, in schema order.
type Item struct {
	Name  string
	Value any
}

// New returns an empty model bound to schema.
func New(schema *Schema) *Model {
	return &Model{schema: schema, data: make(map[string]any)}
}

// NewWithData returns a model populated from data. Import and
// validation both run immediately; either failure propagates.
func NewWithData(ctx context.Context, schema *Schema, data map[string]any) (*Model, error) {
	m := New(schema)
	if len(data) > 0 {
		if err := m.ImportData(ctx, data); err != nil {
			return nil, err
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Schema returns the schema this model is bound to.
func (m *Model) Schema() *Schema {
	return m.schema
}

// ImportData merges data into the model, last write wins per key, and
// converts every imported field to its native form. Only keys present
// in data are converted; previously stored values are already native
// and are never re-run through a conversion. A key whose value
// converts to nil is cleared, the same as Set with nil. Keys that
// match no schema field are dropped, or rejected with an ImportError
// when the schema was built with WithStrict.
func (m *Model) ImportData(ctx context.Context, data map[string]any) error {
	start := time.Now()

	var unknown []string
	for key := range data {
		if _, ok := m.schema.fieldIndex[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if m.schema.strict && len(unknown) > 0 {
		sort.Strings(unknown)
		err := &ImportError{Schema: m.schema.name, Keys: unknown, Reason: "unknown fields"}
		emitImportComplete(ctx, m.schema.name, 0, time.Since(start), err)
		return err
	}

	// Stage all conversions before touching the store so a failure
	// leaves it untouched.
	converted := make(map[string]any, len(data))
	var cleared []string
	for _, def := range m.schema.fields {
		raw, ok := data[def.name]
		if !ok {
			continue
		}
		v, err := def.field.ToNative(ctx, raw)
		if err != nil {
			err = newConversionError("to_native", def.name, err)
			emitImportComplete(ctx, m.schema.name, 0, time.Since(start), err)
			return err
		}
		if v == nil {
			cleared = append(cleared, def.name)
			continue
		}
		converted[def.name] = v
	}

	for _, name := range cleared {
		delete(m.data, name)
	}
	for k, v := range converted {
		m.data[k] = v
	}
	emitImportComplete(ctx, m.schema.name, len(converted), time.Since(start), nil)
	return nil
}

// Validate runs every schema field's validation against the model's
// current data, passing nil for absent fields. All failures are
// collected into one ValidationError; validation never stops at the
// first invalid field.
func (m *Model) Validate() error {
	var verr *ValidationError
	for _, def := range m.schema.fields {
		if err := def.field.Validate(m.data[def.name]); err != nil {
			if verr == nil {
				verr = &ValidationError{Schema: m.schema.name, Fields: make(map[string]error)}
			}
			verr.Names = append(verr.Names, def.name)
			verr.Fields[def.name] = err
		}
	}
	emitValidateComplete(context.Background(), m.schema.name, verr)
	if verr != nil {
		return verr
	}
	return nil
}

// Get returns the stored native value for a field.
func (m *Model) Get(name string) (any, bool) {
	v, ok := m.data[name]
	return v, ok
}

// Set converts and stores a single field value. Setting nil clears
// the field.
func (m *Model) Set(ctx context.Context, name string, raw any) error {
	idx, ok := m.schema.fieldIndex[name]
	if !ok {
		return &ImportError{Schema: m.schema.name, Keys: []string{name}, Reason: "unknown field"}
	}
	if raw == nil {
		delete(m.data, name)
		return nil
	}
	v, err := m.schema.fields[idx].field.ToNative(ctx, raw)
	if err != nil {
		return newConversionError("to_native", name, err)
	}
	m.data[name] = v
	return nil
}

// Fields returns all schema field names in declaration order.
func (m *Model) Fields() []string {
	return m.schema.Fields()
}

// Names returns the names of fields with present data, in schema
// order.
func (m *Model) Names() []string {
	out := make([]string, 0, len(m.data))
	for _, def := range m.schema.fields {
		if _, ok := m.data[def.name]; ok {
			out = append(out, def.name)
		}
	}
	return out
}

// Items returns (name, value) pairs for fields with present data, in
// schema order.
func (m *Model) Items() []Item {
	out := make([]Item, 0, len(m.data))
	for _, def := range m.schema.fields {
		if v, ok := m.data[def.name]; ok {
			out = append(out, Item{Name: def.name, Value: v})
		}
	}
	return out
}

// Equal reports structural equality: both models share the same
// schema and every schema field agrees on presence and value.
func (m *Model) Equal(other *Model) bool {
	if m == other {
		return true
	}
	if other == nil || m.schema != other.schema {
		return false
	}
	for _, def := range m.schema.fields {
		a, aok := m.data[def.name]
		b, bok := other.data[def.name]
		if aok != bok {
			return false
		}
		if aok && !equalValue(a, b) {
			return false
		}
	}
	return true
}

// equalValue compares stored values, unwrapping nested models.
func equalValue(a, b any) bool {
	am, aok := a.(*Model)
	bm, bok := b.(*Model)
	if aok || bok {
		return aok && bok && am.Equal(bm)
	}
	return reflect.DeepEqual(a, b)
}

// ExportData converts every schema field and returns the full
// schema-shaped mapping. No projection is applied and no exports run;
// absent fields appear with a nil value. Lower-level collaborators
// (persistence adapters) use this faithful dump.
func (m *Model) ExportData(ctx context.Context, native bool) (*Mapping, error) {
	out := NewMapping()
	for _, def := range m.schema.fields {
		v, err := convertField(ctx, def.field, m.data[def.name], native)
		if err != nil {
			return nil, newConversionError(convOp(native), def.name, err)
		}
		out.Set(def.name, v)
	}
	return out, nil
}

// String describes the model for debugging.
func (m *Model) String() string {
	return fmt.Sprintf("<%s model, %d/%d fields>", m.schema.name, len(m.data), len(m.schema.fields))
}

// convertField runs one field conversion in the requested direction.
func convertField(ctx context.Context, f Field, v any, native bool) (any, error) {
	if native {
		return f.ToNative(ctx, v)
	}
	return f.ToData(ctx, v)
}

func convOp(native bool) string {
	if native {
		return "to_native"
	}
	return "to_data"
}
