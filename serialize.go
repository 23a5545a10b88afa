package marrow

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Serialization modes for the two projected views.
const (
	modeData   = "data"
	modeNative = "native"
)

// ToData serializes the model to transport primitives, applying
// projection rules and running export computations.
func (m *Model) ToData(ctx context.Context) (*Mapping, error) {
	return m.serialize(ctx, false)
}

// ToNative serializes the model to native values, applying projection
// rules and running export computations.
func (m *Model) ToNative(ctx context.Context) (*Mapping, error) {
	return m.serialize(ctx, true)
}

// serialize fans field conversions and export computations out
// concurrently, then assembles the result in declaration order:
// fields first, then exports. Completion order never leaks into key
// order. Any failing unit aborts the whole call.
func (m *Model) serialize(ctx context.Context, native bool) (*Mapping, error) {
	mode := modeData
	if native {
		mode = modeNative
	}

	start := time.Now()
	emitSerializeStart(ctx, m.schema.name, mode)

	var retErr error
	defer func() {
		emitSerializeComplete(ctx, m.schema.name, mode, time.Since(start), retErr)
	}()

	converted, err := m.convertFields(ctx, native)
	if err != nil {
		retErr = err
		return nil, retErr
	}

	exported, err := m.runExports(ctx)
	if err != nil {
		retErr = err
		return nil, retErr
	}

	out := NewMapping()
	for i, def := range m.schema.fields {
		v := converted[i]
		switch {
		case !isEmpty(v) && def.field.Projection() != ProjectNever:
			out.Set(def.name, v)
		case isEmpty(v) && def.field.Projection() == ProjectAlways:
			out.Set(def.name, v)
		}
	}

	// Exports are never subject to projection.
	for i, def := range m.schema.exports {
		out.Set(def.name, exported[i])
	}

	return out, nil
}

// convertFields runs every field conversion as an independent unit of
// work, collecting results by schema position.
func (m *Model) convertFields(ctx context.Context, native bool) ([]any, error) {
	results := make([]any, len(m.schema.fields))
	g, ctx := errgroup.WithContext(ctx)
	for i, def := range m.schema.fields {
		g.Go(func() error {
			v, err := convertField(ctx, def.field, m.data[def.name], native)
			if err != nil {
				return newConversionError(convOp(native), def.name, err)
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runExports invokes every export computation bound to the model,
// collecting results by declaration position.
func (m *Model) runExports(ctx context.Context) ([]any, error) {
	results := make([]any, len(m.schema.exports))
	g, ctx := errgroup.WithContext(ctx)
	for i, def := range m.schema.exports {
		g.Go(func() error {
			v, err := def.fn(ctx, m)
			if err != nil {
				return newConversionError("export", def.name, err)
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
