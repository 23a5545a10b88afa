package marrow

import (
	"reflect"
	"sync"
)

var (
	derived   = make(map[reflect.Type]*Schema)
	derivedMu sync.RWMutex
)

// Use returns the cached derived schema for T, deriving it on first
// request. Derivation is cached by reflect type.
func Use[T any]() (*Schema, error) {
	typ := reflect.TypeFor[T]()

	// Fast path: read-lock cache check
	derivedMu.RLock()
	if cached, ok := derived[typ]; ok {
		derivedMu.RUnlock()
		return cached, nil
	}
	derivedMu.RUnlock()

	// Slow path: derive and cache with write-lock
	derivedMu.Lock()
	defer derivedMu.Unlock()

	// Double-check pattern
	if cached, ok := derived[typ]; ok {
		return cached, nil
	}

	schema, err := Derive[T]()
	if err != nil {
		return nil, err
	}

	derived[typ] = schema
	return schema, nil
}

// Reset clears the derived schema cache.
// This is primarily useful for test isolation.
func Reset() {
	derivedMu.Lock()
	defer derivedMu.Unlock()
	derived = make(map[reflect.Type]*Schema)
}
