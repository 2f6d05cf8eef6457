// ABOUTME: Synchronous validation of connect arguments
// ABOUTME: Checks WebSocket URLs and turns header pairs into an upgrade request header

package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Header is a single name/value pair merged into the upgrade request.
type Header struct {
	Name  string
	Value string
}

// reservedHeaders are generated by the handshake and may not be overridden.
var reservedHeaders = map[string]bool{
	"Upgrade":                  true,
	"Connection":               true,
	"Sec-Websocket-Key":        true,
	"Sec-Websocket-Version":    true,
	"Sec-Websocket-Extensions": true,
}

// validateURL checks that rawURL is an absolute ws or wss URL with a host.
func validateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("%w: scheme must be ws or wss, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}

// buildHeader validates header pairs and collects them into an http.Header.
// Repeated names are kept as multiple values.
func buildHeader(headers []Header) (http.Header, error) {
	if len(headers) == 0 {
		return nil, nil
	}

	h := make(http.Header, len(headers))
	for _, kv := range headers {
		if !httpguts.ValidHeaderFieldName(kv.Name) {
			return nil, fmt.Errorf("%w: invalid name %q", ErrInvalidHeader, kv.Name)
		}
		if !httpguts.ValidHeaderFieldValue(kv.Value) {
			return nil, fmt.Errorf("%w: invalid value for %q", ErrInvalidHeader, kv.Name)
		}
		name := http.CanonicalHeaderKey(kv.Name)
		if reservedHeaders[name] {
			return nil, fmt.Errorf("%w: %q is set by the handshake", ErrInvalidHeader, name)
		}
		h.Add(name, kv.Value)
	}
	return h, nil
}
