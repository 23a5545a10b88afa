// Package yaml provides a YAML codec implementation.
package yaml

import (
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/zoobzio/marrow"
)

// yamlCodec implements marrow.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() marrow.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML. Mapping values keep their key order.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	return yamlv3.Marshal(v)
}

// Unmarshal decodes YAML data into v.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	return yamlv3.Unmarshal(data, v)
}
