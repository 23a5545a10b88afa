package marrow

import (
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register model tags with sentinel
	sentinel.Tag("model")
	sentinel.Tag("model.projection")
	sentinel.Tag("model.required")
	sentinel.Tag("model.secret")
}

// Derive builds a Schema from a Go struct's metadata. Exported fields
// map to field kinds by their reflect kind; struct tags refine the
// declaration:
//
//	type Person struct {
//	    FirstName string    `model:"first_name" model.required:"true"`
//	    Password  string    `model:"password" model.secret:"bcrypt"`
//	    Joined    time.Time `model:"joined" model.projection:"always"`
//	    Internal  string    `model:"-"`
//	}
//
// Absent a model tag, names are the snake-cased Go field name. Fields
// tagged "-" are skipped; unsupported kinds are a SchemaError.
//
// Use Use[T] for the cached variant.
func Derive[T any]() (*Schema, error) {
	spec := sentinel.Scan[T]()
	b := NewSchema(toSnake(spec.TypeName))

	for _, fm := range spec.Fields {
		name := fm.Tags["model"]
		if name == "-" {
			continue
		}
		if name == "" {
			name = toSnake(fm.Name)
		}

		field, err := deriveField(b.name, name, fm)
		if err != nil {
			return nil, err
		}
		b.Field(name, field)
	}

	return b.Build()
}

// deriveField maps one struct field to a field declaration.
func deriveField(schema, name string, fm sentinel.FieldMetadata) (Field, error) {
	var opts []FieldOption

	if fm.Tags["model.required"] == "true" {
		opts = append(opts, Required())
	}
	if tag, ok := fm.Tags["model.projection"]; ok {
		p, valid := ParseProjection(tag)
		if !valid {
			return nil, newSchemaError(schema, name, "unknown projection "+tag)
		}
		opts = append(opts, Project(p))
	}

	if algo, ok := fm.Tags["model.secret"]; ok {
		if !IsValidHashAlgo(HashAlgo(algo)) {
			return nil, newSchemaError(schema, name, "unknown hash algorithm "+algo)
		}
		if fm.ReflectType.Kind() != reflect.String {
			return nil, newSchemaError(schema, name, "secret fields must be strings")
		}
		return Secret(HashAlgo(algo), opts...), nil
	}

	return fieldForType(schema, name, fm.ReflectType, opts)
}

// fieldForType maps a reflect type to a field kind.
func fieldForType(schema, name string, rt reflect.Type, opts []FieldOption) (Field, error) {
	switch rt.Kind() {
	case reflect.String:
		return String(opts...), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(opts...), nil
	case reflect.Float32, reflect.Float64:
		return Float(opts...), nil
	case reflect.Bool:
		return Bool(opts...), nil
	case reflect.Struct:
		if rt == reflect.TypeOf(time.Time{}) {
			return Time(opts...), nil
		}
		nested, err := deriveNested(rt)
		if err != nil {
			return nil, err
		}
		return Nested(nested, opts...), nil
	case reflect.Pointer:
		return fieldForType(schema, name, rt.Elem(), opts)
	case reflect.Slice:
		elem, err := fieldForType(schema, name, rt.Elem(), nil)
		if err != nil {
			return nil, err
		}
		return List(elem, opts...), nil
	}
	return nil, newSchemaError(schema, name, "unsupported kind "+rt.Kind().String())
}

// deriveNested builds a schema for a nested struct type. Sentinel's
// generic Scan cannot recurse on a reflect.Type, so nested structs are
// walked directly.
func deriveNested(rt reflect.Type) (*Schema, error) {
	b := NewSchema(toSnake(rt.Name()))

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        modelTags(sf.Tag),
		}

		name := fm.Tags["model"]
		if name == "-" {
			continue
		}
		if name == "" {
			name = toSnake(sf.Name)
		}

		field, err := deriveField(b.name, name, fm)
		if err != nil {
			return nil, err
		}
		b.Field(name, field)
	}

	return b.Build()
}

// modelTags extracts model tags from a struct tag.
func modelTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string)
	for _, key := range []string{"model", "model.projection", "model.required", "model.secret"} {
		if val, ok := tag.Lookup(key); ok {
			tags[key] = val
		}
	}
	return tags
}

// toSnake converts a Go identifier to snake_case.
func toSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (!unicode.IsUpper(runes[i-1]) || (i+1 < len(runes) && !unicode.IsUpper(runes[i+1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
