// ABOUTME: Tests for the background HTTP request dispatcher
// ABOUTME: Covers ready and failed promises, argument validation, headers, bodies, and timeouts

package fetch

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/wspoll/internal/config"
	"github.com/2389/wspoll/internal/promise"
)

func newTestDispatcher(timeout time.Duration) *Dispatcher {
	cfg := config.DefaultFetch()
	cfg.Timeout = timeout
	return New(cfg, nil)
}

// settle polls p the way a cooperative caller would until it is no longer pending.
func settle(t *testing.T, p *promise.Promise[Response]) (Response, error) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := p.Poll()
		if !errors.Is(err, promise.ErrPending) {
			return resp, err
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("promise stayed pending")
	return Response{}, nil
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Add("X-Multi", "a")
		w.Header().Add("X-Multi", "b")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	d := newTestDispatcher(5 * time.Second)
	p, err := d.Fetch(srv.URL, nil)
	require.NoError(t, err)

	resp, err := settle(t, p)
	require.NoError(t, err)
	assert.Equal(t, promise.Ready, p.State())
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "hello", resp.Body)
	assert.Equal(t, "text/plain", resp.Headers["Content-Type"])
	assert.Equal(t, "a, b", resp.Headers["X-Multi"])

	// Polling again returns the same result
	again, err := p.Poll()
	require.NoError(t, err)
	assert.Equal(t, resp, again)
}

func TestFetch_ErrorStatusIsReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := newTestDispatcher(5 * time.Second)
	p, err := d.Fetch(srv.URL, nil)
	require.NoError(t, err)

	resp, err := settle(t, p)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Contains(t, resp.Body, "nope")
}

func TestFetch_UnreachableFails(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	d := newTestDispatcher(2 * time.Second)
	p, err := d.Fetch("http://"+addr+"/", nil)
	require.NoError(t, err)

	_, err = settle(t, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, promise.Failed, p.State())
}

func TestFetch_NonHTTPResponseFails(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_, _ = conn.Write([]byte("this is not http\r\n\r\n"))
			conn.Close()
		}
	}()

	d := newTestDispatcher(2 * time.Second)
	p, err := d.Fetch("http://"+ln.Addr().String()+"/", nil)
	require.NoError(t, err)

	_, err = settle(t, p)
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestFetch_TimeoutFails(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	d := newTestDispatcher(50 * time.Millisecond)
	p, err := d.Fetch(srv.URL, nil)
	require.NoError(t, err)

	_, err = settle(t, p)
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestFetch_SendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("X-Token") + "|" + r.UserAgent()))
	}))
	defer srv.Close()

	d := newTestDispatcher(5 * time.Second)
	p, err := d.Fetch(srv.URL, []Header{{Name: "X-Token", Value: "secret"}})
	require.NoError(t, err)

	resp, err := settle(t, p)
	require.NoError(t, err)
	assert.Equal(t, "secret|"+config.DefaultUserAgent, resp.Body)
}

func TestDo_PostBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(r.Method + ":" + string(body)))
	}))
	defer srv.Close()

	d := newTestDispatcher(5 * time.Second)
	p, err := d.Do(Request{
		Method:  http.MethodPost,
		URL:     srv.URL,
		Headers: []Header{{Name: "Content-Type", Value: "application/json"}},
		Body:    `{"a":1}`,
	})
	require.NoError(t, err)

	resp, err := settle(t, p)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, `POST:{"a":1}`, resp.Body)
}

func TestDo_Validation(t *testing.T) {
	d := newTestDispatcher(time.Second)

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"ws scheme", Request{URL: "ws://example.com"}, ErrInvalidURL},
		{"missing host", Request{URL: "http:///path"}, ErrInvalidURL},
		{"relative", Request{URL: "/path"}, ErrInvalidURL},
		{"bad header", Request{URL: "http://example.com", Headers: []Header{{Name: "a b", Value: "x"}}}, ErrInvalidHeader},
		{"bad header value", Request{URL: "http://example.com", Headers: []Header{{Name: "X", Value: "a\nb"}}}, ErrInvalidHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := d.Do(tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, p)
		})
	}

	_, err := d.Do(Request{Method: "BAD METHOD", URL: "http://example.com"})
	assert.Error(t, err)
}

func TestDispatcher_Wait(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	d := newTestDispatcher(5 * time.Second)
	var promises []*promise.Promise[Response]
	for i := 0; i < 5; i++ {
		p, err := d.Fetch(srv.URL, nil)
		require.NoError(t, err)
		promises = append(promises, p)
	}

	d.Wait()
	for _, p := range promises {
		assert.Equal(t, promise.Ready, p.State())
	}
}

func TestFlattenHeader(t *testing.T) {
	h := http.Header{}
	h.Add("x-one", "1")
	h["X-Two"] = []string{"a", "b"}

	got := flattenHeader(h)
	assert.Equal(t, map[string]string{"X-One": "1", "X-Two": "a, b"}, got)
}
