package request

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	err  error
	resp any
}

// capture returns a callback that forwards its single invocation to a channel.
func capture() (Callback, <-chan result) {
	ch := make(chan result, 1)
	return func(err error, resp any) { ch <- result{err: err, resp: resp} }, ch
}

func wait(t *testing.T, ch <-chan result) result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not invoked")
		return result{}
	}
}

func TestGet_EncodesQueryAndParsesResponse(t *testing.T) {
	// --- Arrange ---
	uris := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uris <- r.URL.RequestURI()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()
	c := New(WithHTTPClient(srv.Client()))
	cb, ch := capture()

	// --- Act ---
	c.Get(srv.URL+"/x", map[string]any{"a": 1, "b": "two"}, cb)
	r := wait(t, ch)

	// --- Assert ---
	require.NoError(t, r.err)
	assert.Equal(t, "/x?a=1&b=two", <-uris)
	assert.Equal(t, map[string]any{"ok": true}, r.resp)
}

func TestPost_SendsJSONBody(t *testing.T) {
	type seen struct{ body, contentType, method string }
	requests := make(chan seen, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		requests <- seen{body: string(b), contentType: r.Header.Get("Content-Type"), method: r.Method}
		io.WriteString(w, `{"saved":"yes"}`)
	}))
	defer srv.Close()
	c := New(WithHTTPClient(srv.Client()))
	cb, ch := capture()

	c.Post(srv.URL+"/save", map[string]any{"title": "Hello"}, cb)
	r := wait(t, ch)

	require.NoError(t, r.err)
	got := <-requests
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "application/json", got.contentType)
	assert.JSONEq(t, `{"title":"Hello"}`, got.body)
	assert.Equal(t, map[string]any{"saved": "yes"}, r.resp)
}

func TestParseFailureGoesThroughCallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>not json</html>")
	}))
	defer srv.Close()
	c := New(WithHTTPClient(srv.Client()))
	cb, ch := capture()

	c.Get(srv.URL, nil, cb)
	r := wait(t, ch)

	var perr *ParseError
	require.True(t, errors.As(r.err, &perr), "expected ParseError, got %v", r.err)
	assert.Equal(t, http.StatusOK, perr.Status)
	assert.Nil(t, r.resp)
}

func TestStatusIsNotInspected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"status":"notfound"}`)
	}))
	defer srv.Close()
	c := New(WithHTTPClient(srv.Client()))
	cb, ch := capture()

	c.Get(srv.URL, map[string]any{}, cb)
	r := wait(t, ch)

	require.NoError(t, r.err)
	assert.Equal(t, map[string]any{"status": "notfound"}, r.resp)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := New(WithHTTPClient(&http.Client{}))
	cb, ch := capture()

	c.Post(addr, map[string]any{}, cb)
	r := wait(t, ch)

	var terr *TransportError
	require.True(t, errors.As(r.err, &terr), "expected TransportError, got %v", r.err)
	assert.Equal(t, http.MethodPost, terr.Method)
	assert.Error(t, terr.Unwrap())
}

func TestGet_NestedParamsRejected(t *testing.T) {
	c := New()
	cb, ch := capture()

	c.Get("http://127.0.0.1:0/never", map[string]any{"filter": map[string]any{"a": 1}}, cb)
	r := wait(t, ch)

	assert.ErrorIs(t, r.err, ErrNestedParam)
}

// queue is a Scheduler that holds callbacks until flushed.
type queue struct{ fns chan func() }

func (q *queue) Post(fn func()) { q.fns <- fn }

func TestWithScheduler_DeliversThroughScheduler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[1,2]`)
	}))
	defer srv.Close()
	q := &queue{fns: make(chan func(), 1)}
	c := New(WithHTTPClient(srv.Client()), WithScheduler(q))
	cb, ch := capture()

	c.Get(srv.URL, nil, cb)

	var fn func()
	select {
	case fn = <-q.fns:
	case <-time.After(5 * time.Second):
		t.Fatal("completion was not posted to the scheduler")
	}
	assert.Empty(t, ch, "callback must not run before the scheduler runs it")
	fn()
	r := wait(t, ch)
	require.NoError(t, r.err)
	assert.Len(t, r.resp, 2)
}

func TestEncodeQuery(t *testing.T) {
	q, err := EncodeQuery(map[string]any{"q": "a b&c", "n": 1.5, "ok": true, "z": nil})
	require.NoError(t, err)
	assert.Equal(t, "n=1.5&ok=true&q=a%20b%26c&z=null", q)

	_, err = EncodeQuery(map[string]any{"list": []string{"a"}})
	assert.ErrorIs(t, err, ErrNestedParam)

	q, err = EncodeQuery(nil)
	require.NoError(t, err)
	assert.Empty(t, q)
}

func TestEncodeQuery_MatchesEncodeURIComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "it's (fine)!*~", want: "it's%20(fine)!*~"},
		{in: "a+b=c/d?e", want: "a%2Bb%3Dc%2Fd%3Fe"},
		{in: "café", want: "caf%C3%A9"},
		{in: "-_.", want: "-_."},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			q, err := EncodeQuery(map[string]any{"k": tc.in})
			require.NoError(t, err)
			assert.Equal(t, "k="+tc.want, q)
		})
	}
}

func TestWithBaseURL_ResolvesRelativeURIs(t *testing.T) {
	paths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.RequestURI()
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()
	base, err := url.Parse(srv.URL + "/pages/home")
	require.NoError(t, err)
	c := New(WithHTTPClient(srv.Client()), WithBaseURL(base))
	cb, ch := capture()

	c.Get("/api/widgets", map[string]any{"id": "a b"}, cb)
	r := wait(t, ch)

	require.NoError(t, r.err)
	assert.Equal(t, "/api/widgets?id=a%20b", <-paths)
}
