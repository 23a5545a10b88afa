package marrow

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for model lifecycle events. The core never logs; observers
// hook these to add logging, metrics, or tracing externally.
var (
	SignalSchemaBuilt       = capitan.NewSignal("model.schema.built", "Schema merged and frozen")
	SignalImportComplete    = capitan.NewSignal("model.import.complete", "Import operation finished")
	SignalValidateComplete  = capitan.NewSignal("model.validate.complete", "Validation finished")
	SignalSerializeStart    = capitan.NewSignal("model.serialize.start", "Serialization beginning")
	SignalSerializeComplete = capitan.NewSignal("model.serialize.complete", "Serialization finished")
)

// Keys for typed event data.
var (
	KeySchema       = capitan.NewStringKey("schema")
	KeyMode         = capitan.NewStringKey("mode")
	KeyFieldCount   = capitan.NewIntKey("field_count")
	KeyExportCount  = capitan.NewIntKey("export_count")
	KeyImported     = capitan.NewIntKey("imported")
	KeyInvalidCount = capitan.NewIntKey("invalid_count")
	KeyDuration     = capitan.NewDurationKey("duration")
	KeyError        = capitan.NewErrorKey("error")
)

// emitSchemaBuilt emits an event when a schema is built.
func emitSchemaBuilt(ctx context.Context, schema string, fields, exports int) {
	capitan.Emit(ctx, SignalSchemaBuilt,
		KeySchema.Field(schema),
		KeyFieldCount.Field(fields),
		KeyExportCount.Field(exports),
	)
}

// emitImportComplete emits an event when an import finishes.
func emitImportComplete(ctx context.Context, schema string, imported int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeySchema.Field(schema),
		KeyImported.Field(imported),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalImportComplete, fields...)
		return
	}
	capitan.Emit(ctx, SignalImportComplete, fields...)
}

// emitValidateComplete emits an event when validation finishes.
func emitValidateComplete(ctx context.Context, schema string, verr *ValidationError) {
	fields := []capitan.Field{KeySchema.Field(schema)}
	if verr != nil {
		fields = append(fields,
			KeyInvalidCount.Field(len(verr.Names)),
			KeyError.Field(verr),
		)
		capitan.Error(ctx, SignalValidateComplete, fields...)
		return
	}
	fields = append(fields, KeyInvalidCount.Field(0))
	capitan.Emit(ctx, SignalValidateComplete, fields...)
}

// emitSerializeStart emits an event when serialization begins.
func emitSerializeStart(ctx context.Context, schema, mode string) {
	capitan.Emit(ctx, SignalSerializeStart,
		KeySchema.Field(schema),
		KeyMode.Field(mode),
	)
}

// emitSerializeComplete emits an event when serialization finishes.
func emitSerializeComplete(ctx context.Context, schema, mode string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeySchema.Field(schema),
		KeyMode.Field(mode),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalSerializeComplete, fields...)
		return
	}
	capitan.Emit(ctx, SignalSerializeComplete, fields...)
}
