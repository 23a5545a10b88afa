package marrow

// Options carries per-schema naming metadata. The core does not
// interpret it beyond exposing it; persistence and resource
// collaborators use Name and Namespace to derive collection or
// endpoint names.
type Options struct {
	// Name of the data model. Defaults to the schema's own name.
	Name string

	// Namespace prepended by collaborators to the model name.
	// Empty when absent.
	Namespace string
}

// SchemaOption configures a schema at declaration time.
type SchemaOption func(*Builder)

// Extends declares ancestor schemas, most specific first. Ancestors
// merge least-specific first, so an earlier ancestor's field overrides
// a later one's on name collision, and local declarations override
// both.
func Extends(ancestors ...*Schema) SchemaOption {
	return func(b *Builder) { b.ancestors = append(b.ancestors, ancestors...) }
}

// WithName overrides the Options name.
func WithName(name string) SchemaOption {
	return func(b *Builder) { b.opts.Name = name }
}

// WithNamespace sets the Options namespace.
func WithNamespace(ns string) SchemaOption {
	return func(b *Builder) { b.opts.Namespace = ns }
}

// WithStrict makes ImportData reject payload keys that match no
// schema field. The default is to drop them silently.
func WithStrict() SchemaOption {
	return func(b *Builder) { b.strict = true }
}
