package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/ohler55/ojg/oj"
	"golang.org/x/net/http2"
)

// Callback receives either a non-nil err or the parsed response body.
type Callback func(err error, resp any)

// Scheduler runs completion callbacks. player.Loop satisfies it.
type Scheduler interface {
	Post(fn func())
}

// ErrNestedParam is reported by Get for query values that are maps or
// slices; only flat key/value pairs can be encoded.
var ErrNestedParam = errors.New("nested query parameters are not supported")

// TransportError wraps a network-level failure or abort.
type TransportError struct {
	Method string
	URI    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URI, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a response body that is not valid JSON.
type ParseError struct {
	Status int
	Body   []byte
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response (status %d): %v", e.Status, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Client issues requests. The zero value is not usable; call New.
type Client struct {
	http      *http.Client
	base      *url.URL
	scheduler Scheduler
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithScheduler delivers callbacks through s instead of on the goroutine
// that performed the request.
func WithScheduler(s Scheduler) Option {
	return func(cl *Client) { cl.scheduler = s }
}

// WithBaseURL resolves relative request URIs against base, the way a
// browser resolves them against the page URL.
func WithBaseURL(base *url.URL) Option {
	return func(cl *Client) { cl.base = base }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient()
	}
	return c
}

// NewHTTPClient returns a pooled client with HTTP/2 enabled for TLS
// endpoints. It deliberately has no timeout.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		slog.Warn("HTTP/2 unavailable, falling back to HTTP/1.1.", "error", err)
	}
	return &http.Client{Transport: transport}
}

// Post sends data as a JSON body to uri.
func (c *Client) Post(uri string, data any, cb Callback) {
	body, err := json.Marshal(data)
	if err != nil {
		c.deliver(cb, fmt.Errorf("failed to encode request body: %w", err), nil)
		return
	}
	go c.do(http.MethodPost, uri, body, cb)
}

// Get sends data as percent-encoded query parameters. Keys are emitted in
// sorted order.
func (c *Client) Get(uri string, data map[string]any, cb Callback) {
	query, err := EncodeQuery(data)
	if err != nil {
		c.deliver(cb, err, nil)
		return
	}
	if query != "" {
		sep := "?"
		if strings.Contains(uri, "?") {
			sep = "&"
		}
		uri += sep + query
	}
	go c.do(http.MethodGet, uri, nil, cb)
}

func (c *Client) do(method, uri string, body []byte, cb Callback) {
	if c.base != nil {
		ref, err := url.Parse(uri)
		if err != nil {
			c.deliver(cb, &TransportError{Method: method, URI: uri, Err: err}, nil)
			return
		}
		uri = c.base.ResolveReference(ref).String()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, uri, reader)
	if err != nil {
		c.deliver(cb, &TransportError{Method: method, URI: uri, Err: err}, nil)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("Request failed.", "method", method, "uri", uri, "error", err)
		c.deliver(cb, &TransportError{Method: method, URI: uri, Err: err}, nil)
		return
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.deliver(cb, &TransportError{Method: method, URI: uri, Err: fmt.Errorf("failed to read response body: %w", err)}, nil)
		return
	}

	parsed, err := oj.Parse(raw)
	if err != nil {
		c.logger.Debug("Response was not JSON.", "method", method, "uri", uri, "status", resp.StatusCode)
		c.deliver(cb, &ParseError{Status: resp.StatusCode, Body: raw, Err: err}, nil)
		return
	}
	c.deliver(cb, nil, parsed)
}

func (c *Client) deliver(cb Callback, err error, resp any) {
	if cb == nil {
		return
	}
	if c.scheduler == nil {
		cb(err, resp)
		return
	}
	c.scheduler.Post(func() { cb(err, resp) })
}

// EncodeQuery encodes flat key/value pairs the way encodeURIComponent
// would: spaces become %20, not +.
func EncodeQuery(data map[string]any) (string, error) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, err := formatValue(data[k])
		if err != nil {
			return "", fmt.Errorf("query parameter %q: %w", k, err)
		}
		parts = append(parts, escape(k)+"="+escape(v))
	}
	return strings.Join(parts, "&"), nil
}

func formatValue(v any) (string, error) {
	switch tv := v.(type) {
	case nil:
		return "null", nil
	case string:
		return tv, nil
	case fmt.Stringer:
		return tv.String(), nil
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return "", ErrNestedParam
	}
	return fmt.Sprint(v), nil
}

// escape percent-encodes every byte of s except the characters
// encodeURIComponent leaves alone: ASCII letters, digits and -_.!~*'().
func escape(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
