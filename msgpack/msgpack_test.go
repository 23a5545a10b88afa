package msgpack

import (
	"bytes"
	"testing"

	"github.com/zoobzio/marrow"
)

func TestCodec_ContentType(t *testing.T) {
	if got := New().ContentType(); got != "application/msgpack" {
		t.Errorf("ContentType() = %q, want application/msgpack", got)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	m := marrow.NewMapping()
	m.Set("name", "Ron")
	m.Set("age", int64(41))

	data, err := New().Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var payload map[string]any
	if err := New().Unmarshal(data, &payload); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if payload["name"] != "Ron" {
		t.Errorf("name = %v, want Ron", payload["name"])
	}
}

func TestCodec_MappingOrder(t *testing.T) {
	a := marrow.NewMapping()
	a.Set("x", 1)
	a.Set("y", 2)

	b := marrow.NewMapping()
	b.Set("y", 2)
	b.Set("x", 1)

	da, err := New().Marshal(a)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	db, err := New().Marshal(b)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	if bytes.Equal(da, db) {
		t.Error("different insertion orders should encode differently")
	}
}
