package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akhuoa/console-formatter/pkg/fetch"
	"github.com/akhuoa/console-formatter/pkg/permalink"
	"github.com/akhuoa/console-formatter/pkg/server"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/log.txt":
			_, _ = io.WriteString(w, "  ✓ visits the page (12ms)\n")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newServer(t *testing.T, opts server.Options) (*server.Server, *httptest.Server) {
	t.Helper()
	if opts.Fetcher == nil {
		opts.Fetcher = fetch.New(fetch.Options{Timeout: time.Second})
	}
	s, err := server.New(opts)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestNewRequiresFetcher(t *testing.T) {
	_, err := server.New(server.Options{})
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	_, ts := newServer(t, server.Options{})

	tests := []struct {
		name string
		req  server.FormatRequest
		want string
	}{
		{
			name: "default html",
			req:  server.FormatRequest{Text: "All specs passed!"},
			want: `<span class="ansi-green bold">All specs <span class="ansi-green">passed</span>!</span>`,
		},
		{
			name: "ansi input converted",
			req:  server.FormatRequest{Text: "\x1b[1m\x1b[32mOK \x1b[0m", Format: "html"},
			want: `<span class="ansi-green bold">OK </span>`,
		},
		{
			name: "plain text",
			req:  server.FormatRequest{Text: "All specs passed!", Format: "text"},
			want: "All specs passed!",
		},
		{
			name: "empty",
			req:  server.FormatRequest{Format: "html"},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts, "/api/format", tt.req)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var out server.FormatResponse
			decode(t, resp, &out)
			assert.Equal(t, tt.want, out.Output)
		})
	}

	t.Run("standalone", func(t *testing.T) {
		resp := postJSON(t, ts, "/api/format", server.FormatRequest{Text: "x <y>", Standalone: true, Title: "Run 42"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out server.FormatResponse
		decode(t, resp, &out)
		assert.Contains(t, out.Output, "<title>Run 42</title>")
		assert.Contains(t, out.Output, "x &lt;y&gt;")
	})

	t.Run("unknown format", func(t *testing.T) {
		resp := postJSON(t, ts, "/api/format", server.FormatRequest{Text: "x", Format: "pdf"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var out server.ErrorResponse
		decode(t, resp, &out)
		assert.Equal(t, "INVALID_INPUT", out.Code)
		assert.Equal(t, http.StatusBadRequest, out.Status)
	})

	t.Run("malformed json", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/format", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestFetch(t *testing.T) {
	up := upstream(t)
	_, ts := newServer(t, server.Options{})

	t.Run("json", func(t *testing.T) {
		resp := postJSON(t, ts, "/api/fetch", server.FetchRequest{URL: up.URL + "/log.txt"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out server.FetchResponse
		decode(t, resp, &out)
		assert.Equal(t, "  ✓ visits the page (12ms)\n", out.Text)
	})

	t.Run("form", func(t *testing.T) {
		resp, err := http.PostForm(ts.URL+"/api/fetch", url.Values{"url": {up.URL + "/log.txt"}})
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out server.FetchResponse
		decode(t, resp, &out)
		assert.Contains(t, out.Text, "visits the page")
	})

	t.Run("missing url", func(t *testing.T) {
		resp := postJSON(t, ts, "/api/fetch", server.FetchRequest{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var out server.ErrorResponse
		decode(t, resp, &out)
		assert.Equal(t, "Missing url", out.Error)
		assert.Equal(t, "MISSING_INPUT", out.Code)
	})

	t.Run("upstream status", func(t *testing.T) {
		resp := postJSON(t, ts, "/api/fetch", server.FetchRequest{URL: up.URL + "/gone"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var out server.ErrorResponse
		decode(t, resp, &out)
		assert.Equal(t, "Fetch failed: 404", out.Error)
		assert.Equal(t, "UPSTREAM_STATUS", out.Code)
	})

	t.Run("unsupported content type", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/fetch", "text/plain", strings.NewReader("url"))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})
}

func TestPermalink(t *testing.T) {
	_, ts := newServer(t, server.Options{})
	const text = "describe('Login', () => {\n  ✓ works\n})\n"

	resp := postJSON(t, ts, "/api/permalink", server.PermalinkRequest{Text: text})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var link server.PermalinkResponse
	decode(t, resp, &link)
	assert.True(t, strings.HasPrefix(link.Fragment, permalink.FragmentPrefix))

	resp = postJSON(t, ts, "/api/permalink/decode", server.DecodeRequest{Fragment: link.Fragment})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var back server.DecodeResponse
	decode(t, resp, &back)
	assert.Equal(t, text, back.Text)
	assert.Empty(t, back.Warning)

	t.Run("empty text", func(t *testing.T) {
		resp := postJSON(t, ts, "/api/permalink", server.PermalinkRequest{Text: " "})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var out server.ErrorResponse
		decode(t, resp, &out)
		assert.Equal(t, "No content", out.Error)
	})

	t.Run("undecodable", func(t *testing.T) {
		resp := postJSON(t, ts, "/api/permalink/decode", server.DecodeRequest{Fragment: "#log=__8"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out server.DecodeResponse
		decode(t, resp, &out)
		assert.Empty(t, out.Text)
		assert.Equal(t, "Failed to decode permalink", out.Warning)
	})

	t.Run("no fragment", func(t *testing.T) {
		resp := postJSON(t, ts, "/api/permalink/decode", server.DecodeRequest{Fragment: "#top"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out server.DecodeResponse
		decode(t, resp, &out)
		assert.Empty(t, out.Text)
		assert.Empty(t, out.Warning)
	})
}

func TestBodyLimit(t *testing.T) {
	_, ts := newServer(t, server.Options{BodyLimit: 64})

	resp := postJSON(t, ts, "/api/format", server.FormatRequest{Text: strings.Repeat("x", 200)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	var out server.ErrorResponse
	decode(t, resp, &out)
	assert.Equal(t, http.StatusRequestEntityTooLarge, out.Status)

	resp = postJSON(t, ts, "/api/format", server.FormatRequest{Text: "ok"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStaticAndMeta(t *testing.T) {
	_, ts := newServer(t, server.Options{})

	get := func(path string) (*http.Response, string) {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	resp, body := get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Console Formatter")

	resp, body = get("/app.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/api/permalink/decode")

	resp, body = get("/api/styles.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/css; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, ".ansi-green")

	resp, body = get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	resp, _ = get("/missing.txt")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	r, err := http.Post(ts.URL+"/healthz", "application/json", nil)
	require.NoError(t, err)
	_ = r.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, r.StatusCode)
}

func TestStaticDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("custom ui"), 0o644))
	_, ts := newServer(t, server.Options{StaticDir: dir})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "custom ui", string(body))

	_, err = server.New(server.Options{Fetcher: fetch.New(fetch.Options{}), StaticDir: filepath.Join(dir, "nope")})
	assert.Error(t, err)
}

func TestRequestID(t *testing.T) {
	_, ts := newServer(t, server.Options{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Len(t, resp.Header.Get(server.RequestIDHeader), 36)

	const id = "0b6d3f36-7f8e-4a53-9c57-6f4f0a5d2f10"
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(server.RequestIDHeader, id)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(server.RequestIDHeader))

	req.Header.Set(server.RequestIDHeader, "not-an-id")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.NotEqual(t, "not-an-id", resp.Header.Get(server.RequestIDHeader))
}

func TestRecoverer(t *testing.T) {
	s, ts := newServer(t, server.Options{})
	router := s.Handler().(*mux.Router)
	router.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") }).Methods("POST")

	resp := postJSON(t, ts, "/boom", map[string]string{})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var out server.ErrorResponse
	decode(t, resp, &out)
	assert.Equal(t, "INTERNAL", out.Code)
}

func TestMetrics(t *testing.T) {
	up := upstream(t)
	s, ts := newServer(t, server.Options{})

	postJSON(t, ts, "/api/format", server.FormatRequest{Text: "✓ ok"})
	postJSON(t, ts, "/api/format", server.FormatRequest{Text: "\x1b[31mred\x1b[0m"})
	postJSON(t, ts, "/api/fetch", server.FetchRequest{URL: up.URL + "/log.txt"})
	postJSON(t, ts, "/api/fetch", server.FetchRequest{})

	reg := s.Metrics().Registry()
	n, err := testutil.GatherAndCount(reg, "console_formatter_formats_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "annotate and convert series")

	n, err = testutil.GatherAndCount(reg, "console_formatter_fetches_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "OK and MISSING_INPUT series")

	n, err = testutil.GatherAndCount(reg, "console_formatter_http_requests_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 3)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `console_formatter_formats_total{format="html",path="convert"} 1`)
}

func TestServeShutdown(t *testing.T) {
	s, err := server.New(server.Options{Fetcher: fetch.New(fetch.Options{})})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(server.ShutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}
