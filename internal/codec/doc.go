// Package codec converts between JSON text and generic Go values
// (map[string]any, []any, float64, string, bool, nil).
//
// # Overview
//
// Parse decodes one JSON document and Stringify encodes a value as compact
// JSON. Both are stateless. Every failure wraps ErrMalformed; parse errors
// carry the byte offset of the syntax error.
package codec
