// ABOUTME: Stateless JSON parse and stringify for host values
// ABOUTME: Fails the single call with a descriptive error on malformed input

package codec

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed wraps every parse or stringify failure.
var ErrMalformed = errors.New("malformed json")

// Parse decodes a single JSON document.
func Parse(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: %v at offset %d", ErrMalformed, syntaxErr, syntaxErr.Offset)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

// Stringify encodes v as compact JSON. Values with no JSON form (channels,
// functions, NaN) are rejected.
func Stringify(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return string(data), nil
}
