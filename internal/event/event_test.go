// ABOUTME: Tests for queue item encoding and decoding
// ABOUTME: Covers control prefixes, error causes, and payload pass-through

package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want string
	}{
		{"open", Opened(), "@open"},
		{"close", Closed(), "@close"},
		{"error", Failed(errors.New("connection refused")), "@error: connection refused"},
		{"payload", Text("ping"), "ping"},
		{"empty payload", Text(""), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.Encode())
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Item
	}{
		{"open", "@open", Opened()},
		{"close", "@close", Closed()},
		{"error", "@error: boom", Item{Kind: Error, Text: "boom"}},
		{"payload", `{"type":"hello"}`, Text(`{"type":"hello"}`)},
		{"unknown control", "@mention", Text("@mention")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.in))
		})
	}
}

func TestFailed_NilError(t *testing.T) {
	it := Failed(nil)
	assert.Equal(t, Error, it.Kind)
	assert.Equal(t, "@error: unknown error", it.Encode())
}

func TestIsControl(t *testing.T) {
	assert.False(t, Text("x").IsControl())
	assert.True(t, Opened().IsControl())
	assert.True(t, Closed().IsControl())
	assert.True(t, Failed(errors.New("x")).IsControl())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "payload", Payload.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
