// ABOUTME: One-shot HTTP request dispatcher backed by resty
// ABOUTME: Runs each request on its own goroutine and settles a promise with the outcome

package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/http/httpguts"

	"github.com/2389/wspoll/internal/config"
	"github.com/2389/wspoll/internal/promise"
)

var (
	// ErrInvalidURL is returned for a malformed request URL.
	ErrInvalidURL = errors.New("invalid request url")

	// ErrInvalidHeader is returned for a malformed header pair.
	ErrInvalidHeader = errors.New("invalid header")

	// ErrRequestFailed wraps every transport failure stored in a promise.
	ErrRequestFailed = errors.New("request failed")
)

// Header is a single request header pair.
type Header struct {
	Name  string
	Value string
}

// Request describes a one-shot HTTP request. Method defaults to GET.
type Request struct {
	Method  string
	URL     string
	Headers []Header
	Body    string
}

// Response is the settled value of a successful request.
type Response struct {
	Status  int
	Headers map[string]string
	Body    string
}

// Dispatcher issues requests in the background.
type Dispatcher struct {
	client *resty.Client
	logger *slog.Logger
	wg     sync.WaitGroup
}

// New creates a dispatcher. Pass nil logger for default.
func New(cfg config.FetchConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	return &Dispatcher{
		client: client,
		logger: logger.With("component", "fetch"),
	}
}

// Fetch issues a GET request for rawURL.
func (d *Dispatcher) Fetch(rawURL string, headers []Header) (*promise.Promise[Response], error) {
	return d.Do(Request{Method: http.MethodGet, URL: rawURL, Headers: headers})
}

// Do validates req, starts it in the background, and returns its promise.
func (d *Dispatcher) Do(req Request) (*promise.Promise[Response], error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	if !httpguts.ValidHeaderFieldName(req.Method) {
		return nil, fmt.Errorf("invalid method %q", req.Method)
	}
	if err := validateURL(req.URL); err != nil {
		return nil, err
	}
	if err := validateHeaders(req.Headers); err != nil {
		return nil, err
	}

	p := promise.New[Response]()
	logger := d.logger.With("request_id", p.ID)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("request panicked", "panic", r)
				p.Reject(fmt.Errorf("%w: panic: %v", ErrRequestFailed, r))
			}
		}()

		resp, err := d.execute(req)
		if err != nil {
			logger.Warn("request failed", "method", req.Method, "url", req.URL, "error", err)
			p.Reject(err)
			return
		}
		logger.Debug("request complete", "method", req.Method, "url", req.URL, "status", resp.Status)
		p.Resolve(resp)
	}()

	return p, nil
}

// Wait blocks until every dispatched request has settled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// execute performs the request synchronously.
func (d *Dispatcher) execute(req Request) (Response, error) {
	r := d.client.R().SetContext(context.Background())
	for _, h := range req.Headers {
		r.Header.Add(h.Name, h.Value)
	}
	if req.Body != "" {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	return Response{
		Status:  resp.StatusCode(),
		Headers: flattenHeader(resp.Header()),
		Body:    string(resp.Body()),
	}, nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

func validateHeaders(headers []Header) error {
	for _, h := range headers {
		if !httpguts.ValidHeaderFieldName(h.Name) {
			return fmt.Errorf("%w: invalid name %q", ErrInvalidHeader, h.Name)
		}
		if !httpguts.ValidHeaderFieldValue(h.Value) {
			return fmt.Errorf("%w: invalid value for %q", ErrInvalidHeader, h.Name)
		}
	}
	return nil
}

// flattenHeader joins repeated header values with ", " under canonical keys.
func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[http.CanonicalHeaderKey(k)] = strings.Join(vs, ", ")
	}
	return out
}
