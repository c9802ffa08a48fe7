// Package json wraps the JSON codec used across the engine so call sites
// never import the underlying implementation directly.
package json

import (
	"io"

	gojson "github.com/goccy/go-json"
)

// Marshal encodes v as JSON
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// MarshalIndent encodes v as indented JSON
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// Unmarshal decodes JSON data into v
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// NewDecoder returns a streaming decoder reading from r
func NewDecoder(r io.Reader) *gojson.Decoder {
	return gojson.NewDecoder(r)
}

// Valid reports whether data is valid JSON
func Valid(data []byte) bool {
	return gojson.Valid(data)
}
