// Package marrow provides declarative data modeling with asynchronous
// serialization.
//
// A schema is declared once, as an ordered set of typed fields plus
// named export computations, and produces multiple views of an instance
// on demand: a faithful schema-shaped dump, a native-typed view, and a
// transport-primitive view with projection rules and exports applied.
//
// # Schemas
//
// Schemas are built explicitly, not inferred at use time:
//
//	person, err := marrow.NewSchema("person").
//	    Field("first_name", marrow.String(marrow.Required())).
//	    Field("last_name", marrow.String(marrow.Required())).
//	    Export("full_name", func(ctx context.Context, m *marrow.Model) (any, error) {
//	        first, _ := m.Get("first_name")
//	        last, _ := m.Get("last_name")
//	        return fmt.Sprintf("%v %v", first, last), nil
//	    }).
//	    Build()
//
// Schemas compose through inheritance. Ancestors merge least-specific
// first, local declarations win on name collision, and declaration
// order is preserved across merges:
//
//	employee, err := marrow.NewSchema("employee", marrow.Extends(person)).
//	    Field("badge", marrow.Int()).
//	    Build()
//
// A built Schema is immutable and shared by every Model bound to it.
//
// # Models
//
// A Model holds imported, converted field data for one instance:
//
//	m := marrow.New(person)
//	err := m.ImportData(ctx, map[string]any{"first_name": "Ron", "last_name": "Burgundy"})
//	err = m.Validate()
//
// Partial imports merge, last write wins per key. Validation collects
// every failing field into a single ValidationError rather than
// stopping at the first.
//
// # Serialization
//
// Two projected views include exports and honor each field's
// projection policy; the dump view does neither:
//
//	out, err := m.ToData(ctx)     // transport primitives, projected, exports
//	out, err := m.ToNative(ctx)   // native values, projected, exports
//	out, err := m.ExportData(ctx, false)  // schema-shaped dump
//
// Field conversions and export computations run concurrently, but the
// resulting Mapping always preserves field declaration order followed
// by export declaration order. Conversions and exports take a
// context.Context so implementations are free to perform I/O (for
// example resolving a referenced entity); a deadline on the context
// fails the whole call, never yielding a partial mapping.
//
// # Projection
//
// Empty values are omitted by default. A field declared with
// ProjectAlways appears even when empty; ProjectNever is never
// included in projected views. Exports are always included.
//
// # Field Kinds
//
// Built-in field constructors:
//
//   - String, Int, Float, Bool - scalar values
//   - Time - time.Time native, RFC 3339 string on the data side
//   - List(elem) - homogeneous list of another field kind
//   - Nested(schema) - embedded model
//   - Secret(algo) - hashed on import, never projected
//
// Secret fields hash plaintext through a registered Hasher (argon2,
// bcrypt, sha256, sha512) and default to ProjectNever.
//
// # Struct Derivation
//
// A Schema can be derived from a Go struct via sentinel metadata:
//
//	type Person struct {
//	    FirstName string `model:"first_name" model.required:"true"`
//	    Password  string `model:"password" model.secret:"bcrypt"`
//	}
//
//	schema, err := marrow.Derive[Person]()
//
// Derived schemas are cached per type; Reset clears the cache for
// test isolation.
//
// # Codecs
//
// Serialized mappings are handed to a Codec for wire encoding. The
// json, yaml, and msgpack subpackages provide implementations that
// preserve Mapping key order.
package marrow

import "context"

// ExportFunc computes a named value for inclusion in serialized
// output. It is invoked bound to the model being serialized and may
// block on I/O; cancellation is observed through ctx.
//
// Export results are always included in projected views, after all
// fields, in declaration order.
type ExportFunc func(ctx context.Context, m *Model) (any, error)

// Codec provides content-type aware marshaling for serialized
// mappings.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}
