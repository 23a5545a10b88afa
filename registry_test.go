package marrow_test

import (
	"testing"

	"github.com/zoobzio/marrow"
)

type Widget struct {
	Name  string `model:"name"`
	Price int    `model:"price"`
}

func TestUse_Caches(t *testing.T) {
	marrow.Reset()

	first, err := marrow.Use[Widget]()
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}

	second, err := marrow.Use[Widget]()
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}

	if first != second {
		t.Error("Use() should return the cached schema")
	}
}

func TestReset_ClearsCache(t *testing.T) {
	marrow.Reset()

	first, err := marrow.Use[Widget]()
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}

	marrow.Reset()

	second, err := marrow.Use[Widget]()
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}

	if first == second {
		t.Error("Reset() should clear the cache")
	}
}
