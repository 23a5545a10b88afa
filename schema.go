package marrow

import "context"

// Schema is the immutable, per-type ordered set of fields and exports.
// It is built once via Builder and shared read-only by every Model
// bound to it and by all concurrent serializations.
type Schema struct {
	name   string
	opts   Options
	strict bool

	fields      []fieldDef
	fieldIndex  map[string]int
	exports     []exportDef
	exportIndex map[string]int
}

// Builder accumulates field and export declarations for a schema.
// Declarations are merged with ancestors and frozen by Build.
type Builder struct {
	name      string
	opts      Options
	strict    bool
	ancestors []*Schema
	fields    []fieldDef
	exports   []exportDef
	err       error
}

// NewSchema starts a schema declaration.
func NewSchema(name string, opts ...SchemaOption) *Builder {
	b := &Builder{name: name}
	for _, opt := range opts {
		opt(b)
	}
	if b.opts.Name == "" {
		b.opts.Name = name
	}
	return b
}

// Field declares a named field. Redeclaring a name within the same
// builder is a schema error.
func (b *Builder) Field(name string, field Field) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		b.err = newSchemaError(b.name, name, "empty field name")
		return b
	}
	for _, def := range b.fields {
		if def.name == name {
			b.err = newSchemaError(b.name, name, "field declared twice")
			return b
		}
	}
	b.fields = append(b.fields, fieldDef{name: name, schema: b.name, field: field})
	return b
}

// Export declares a named export computation.
func (b *Builder) Export(name string, fn ExportFunc) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" || fn == nil {
		b.err = newSchemaError(b.name, name, "invalid export declaration")
		return b
	}
	for _, def := range b.exports {
		if def.name == name {
			b.err = newSchemaError(b.name, name, "export declared twice")
			return b
		}
	}
	b.exports = append(b.exports, exportDef{name: name, fn: fn})
	return b
}

// Build merges ancestor schemas with the local declarations and
// returns the immutable Schema.
//
// Ancestors are processed least-specific to most-specific, each entry
// overwriting earlier entries at the same name; local declarations
// layer last and always win. A name overwritten at any layer keeps
// its first-insertion position, so declaration order is stable across
// the hierarchy. Field/export name collisions in the merged result
// are a SchemaError.
func (b *Builder) Build() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}

	s := &Schema{
		name:        b.name,
		opts:        b.opts,
		strict:      b.strict,
		fieldIndex:  make(map[string]int),
		exportIndex: make(map[string]int),
	}

	// Ancestors arrive most-specific first; walk them in reverse so
	// the most specific ancestor applies last.
	for i := len(b.ancestors) - 1; i >= 0; i-- {
		anc := b.ancestors[i]
		for _, def := range anc.fields {
			s.setField(fieldDef{name: def.name, schema: b.name, field: def.field})
		}
		for _, def := range anc.exports {
			s.setExport(def)
		}
	}

	for _, def := range b.fields {
		s.setField(def)
	}
	for _, def := range b.exports {
		s.setExport(def)
	}

	for _, def := range s.fields {
		if _, ok := s.exportIndex[def.name]; ok {
			return nil, newSchemaError(b.name, def.name, "name declared as both field and export")
		}
		if sf, ok := def.field.(secretField); ok && !IsValidHashAlgo(sf.algo) {
			return nil, newSchemaError(b.name, def.name, "unknown hash algorithm "+string(sf.algo))
		}
	}

	emitSchemaBuilt(context.Background(), s.name, len(s.fields), len(s.exports))
	return s, nil
}

// MustBuild is like Build but panics on error. Intended for
// package-level schema declarations where a failure is a programming
// error.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// setField inserts or overwrites a field, keeping the original
// position on overwrite.
func (s *Schema) setField(def fieldDef) {
	if i, ok := s.fieldIndex[def.name]; ok {
		s.fields[i] = def
		return
	}
	s.fieldIndex[def.name] = len(s.fields)
	s.fields = append(s.fields, def)
}

// setExport inserts or overwrites an export, keeping the original
// position on overwrite.
func (s *Schema) setExport(def exportDef) {
	if i, ok := s.exportIndex[def.name]; ok {
		s.exports[i] = def
		return
	}
	s.exportIndex[def.name] = len(s.exports)
	s.exports = append(s.exports, def)
}

// Name returns the schema's declared name.
func (s *Schema) Name() string {
	return s.name
}

// Options returns the schema's naming metadata.
func (s *Schema) Options() Options {
	return s.opts
}

// Strict reports whether imports reject unknown keys.
func (s *Schema) Strict() bool {
	return s.strict
}

// Fields returns field names in declaration order.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.fields))
	for i, def := range s.fields {
		out[i] = def.name
	}
	return out
}

// Exports returns export names in declaration order.
func (s *Schema) Exports() []string {
	out := make([]string, len(s.exports))
	for i, def := range s.exports {
		out[i] = def.name
	}
	return out
}

// Lookup returns the field declared under name.
func (s *Schema) Lookup(name string) (Field, bool) {
	i, ok := s.fieldIndex[name]
	if !ok {
		return nil, false
	}
	return s.fields[i].field, true
}
