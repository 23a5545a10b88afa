package marrow

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Mapping is an insertion-ordered string-keyed map. Serialized views
// are returned as Mappings so key order survives the trip through a
// Codec: it marshals to JSON, YAML, and MessagePack with keys in
// insertion order.
//
// The zero value is not usable; call NewMapping.
type Mapping struct {
	keys   []string
	values map[string]any
}

// NewMapping returns an empty ordered mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]any)}
}

// Set stores a value under key. A key keeps its original position when
// overwritten.
func (m *Mapping) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	return len(m.keys)
}

// Value returns a plain map copy of the entries. Order is lost; use
// Keys to recover it.
func (m *Mapping) Value() map[string]any {
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the mapping as a JSON object in key order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving its key order.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return &json.UnmarshalTypeError{Value: "non-object", Type: reflect.TypeOf(Mapping{})}
	}
	m.keys = nil
	m.values = make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		m.Set(key, value)
	}
	// consume closing brace
	_, err = dec.Token()
	return err
}

// MarshalYAML encodes the mapping as a YAML mapping node in key order.
func (m *Mapping) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range m.keys {
		var keyNode, valNode yaml.Node
		if err := keyNode.Encode(k); err != nil {
			return nil, err
		}
		if err := valNode.Encode(m.values[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &keyNode, &valNode)
	}
	return node, nil
}

// EncodeMsgpack encodes the mapping as a msgpack map in key order.
func (m *Mapping) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(m.keys)); err != nil {
		return err
	}
	for _, k := range m.keys {
		if err := enc.EncodeString(k); err != nil {
			return err
		}
		if err := enc.Encode(m.values[k]); err != nil {
			return err
		}
	}
	return nil
}
