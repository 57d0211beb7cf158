// Package jsonutil provides a high-performance JSON encoding/decoding wrapper.
// It uses github.com/go-json-experiment/json, which is 2-3x faster than
// encoding/json, and exposes the token-level decoder needed to preserve
// document order when walking configuration objects.
//
// The API matches the standard library where possible:
//
//	err := jsonutil.Unmarshal(data, &v)
//	data, err := jsonutil.Marshal(v)
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// MarshalIndent returns the indented JSON encoding of v.
func MarshalIndent(v any, indent string) ([]byte, error) {
	return json.Marshal(v, jsontext.WithIndent(indent))
}

// MarshalWrite streams the JSON encoding of v to w with the given indent.
func MarshalWrite(w io.Writer, v any, indent string) error {
	if indent == "" {
		return json.MarshalWrite(w, v)
	}
	return json.MarshalWrite(w, v, jsontext.WithIndent(indent))
}

// NewDecoder returns a token-level decoder reading from r. Use ReadToken
// to walk object members in document order and UnmarshalNext to decode a
// member value in place.
func NewDecoder(r io.Reader) *jsontext.Decoder {
	return jsontext.NewDecoder(r)
}

// UnmarshalNext decodes the next value from dec into v.
func UnmarshalNext(dec *jsontext.Decoder, v any) error {
	return json.UnmarshalDecode(dec, v)
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return jsontext.Value(data).IsValid()
}
