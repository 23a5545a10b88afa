package json

import (
	"context"
	"testing"

	"github.com/zoobzio/marrow"
)

func TestCodec_ContentType(t *testing.T) {
	if got := New().ContentType(); got != "application/json" {
		t.Errorf("ContentType() = %q, want application/json", got)
	}
}

func TestCodec_SerializedModel(t *testing.T) {
	ctx := context.Background()
	schema := marrow.NewSchema("person").
		Field("first_name", marrow.String()).
		Field("last_name", marrow.String()).
		Field("age", marrow.Int()).
		MustBuild()

	m, err := marrow.NewWithData(ctx, schema, map[string]any{
		"first_name": "Ron",
		"last_name":  "Burgundy",
		"age":        41,
	})
	if err != nil {
		t.Fatalf("NewWithData() error: %v", err)
	}

	out, err := m.ToData(ctx)
	if err != nil {
		t.Fatalf("ToData() error: %v", err)
	}

	data, err := New().Marshal(out)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	want := `{"first_name":"Ron","last_name":"Burgundy","age":41}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s (schema order preserved)", data, want)
	}
}

func TestCodec_Unmarshal(t *testing.T) {
	var payload map[string]any
	if err := New().Unmarshal([]byte(`{"a":1}`), &payload); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if payload["a"] != float64(1) {
		t.Errorf("payload = %v", payload)
	}
}
