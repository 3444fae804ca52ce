package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pastebin/internal/logs"
	"pastebin/internal/metrics"
	"pastebin/internal/paste"
	"pastebin/internal/store"
)

type testServer struct {
	*httptest.Server
	client  *http.Client
	metrics *metrics.Registry
	logger  *logs.Logger
}

// sequentialIDs hands out 0aA, 1aA, ... so tests know the next id.
func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%daA", n.Add(1)-1)
	}
}

func setUpTestServer(t *testing.T, capacity int, opts Options) *testServer {
	t.Helper()

	reg := metrics.NewRegistry()
	logger := logs.NewLogger(100, logs.DEBUG)
	st := store.New(capacity, reg)
	svc := paste.NewService(st, sequentialIDs(), logger)

	if opts.MaxPasteSize == 0 {
		opts.MaxPasteSize = 32 * 1024
	}

	h := NewHandler(svc, reg, logger, opts)
	server := httptest.NewServer(RegisterRoutes(mux.NewRouter(), h))
	t.Cleanup(server.Close)

	return &testServer{
		Server: server,
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		metrics: reg,
		logger:  logger,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body io.Reader, header http.Header) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(method, s.URL+path, body)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func browser() http.Header {
	return http.Header{
		"User-Agent": {"Mozilla/5.0"},
		"Accept":     {"text/html,application/xhtml+xml"},
	}
}

/* ---------------- GET {base} ---------------- */

func TestIndex(t *testing.T) {
	server := setUpTestServer(t, 10, Options{BasePath: "/-"})

	for _, path := range []string{"/-", "/-/"} {
		t.Run(path, func(t *testing.T) {
			resp, body := server.do(t, http.MethodGet, path, nil, browser())

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.Contains(t, body, `action="/-"`)
			assert.Contains(t, body, `name="val"`)
		})
	}
}

/* ---------------- POST {base} ---------------- */

func TestSubmit(t *testing.T) {
	server := setUpTestServer(t, 10, Options{BasePath: "/-"})
	form := http.Header{"Content-Type": {"application/x-www-form-urlencoded"}}

	t.Run("RedirectsToPaste", func(t *testing.T) {
		body := strings.NewReader(url.Values{"val": {"hello world"}}.Encode())
		resp, _ := server.do(t, http.MethodPost, "/-", body, form)

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/-/0aA", resp.Header.Get("Location"))

		_, content := server.do(t, http.MethodGet, "/-/0aA", nil, nil)
		assert.Equal(t, "hello world", content)
	})

	t.Run("TrailingSlash", func(t *testing.T) {
		body := strings.NewReader(url.Values{"val": {"second"}}.Encode())
		resp, _ := server.do(t, http.MethodPost, "/-/", body, form)

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/-/1aA", resp.Header.Get("Location"))
	})

	t.Run("MissingField", func(t *testing.T) {
		body := strings.NewReader(url.Values{"other": {"x"}}.Encode())
		resp, _ := server.do(t, http.MethodPost, "/-", body, form)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("TooLarge", func(t *testing.T) {
		small := setUpTestServer(t, 10, Options{BasePath: "/-", MaxPasteSize: 16})
		body := strings.NewReader(url.Values{"val": {strings.Repeat("x", 64)}}.Encode())
		resp, _ := small.do(t, http.MethodPost, "/-", body, form)

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
		assert.Equal(t, int64(1), small.metrics.Get(metrics.PasteRejectedTotal))
		assert.Equal(t, int64(0), small.metrics.Get(metrics.PastesStoredTotal))
	})
}

/* ---------------- PUT {base} ---------------- */

func TestSubmitRaw(t *testing.T) {
	server := setUpTestServer(t, 10, Options{BasePath: "/-"})

	t.Run("ReturnsURL", func(t *testing.T) {
		resp, body := server.do(t, http.MethodPut, "/-", strings.NewReader("raw paste"), nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		host := strings.TrimPrefix(server.URL, "http://")
		assert.Equal(t, "https://"+host+"/-/0aA\n", body)

		_, content := server.do(t, http.MethodGet, "/-/0aA", nil, nil)
		assert.Equal(t, "raw paste", content)
	})

	t.Run("BinaryContent", func(t *testing.T) {
		raw := []byte{0x00, 0xff, 0xfe, 0x10}
		_, body := server.do(t, http.MethodPut, "/-/", bytes.NewReader(raw), nil)
		assert.True(t, strings.HasSuffix(body, "/-/1aA\n"))

		_, content := server.do(t, http.MethodGet, "/-/1aA", nil, nil)
		assert.Equal(t, raw, []byte(content))
	})

	t.Run("WithoutHost", func(t *testing.T) {
		reg := metrics.NewRegistry()
		logger := logs.NewLogger(10, logs.DEBUG)
		svc := paste.NewService(store.New(10, reg), sequentialIDs(), logger)
		h := NewHandler(svc, reg, logger, Options{BasePath: "/-", MaxPasteSize: 1024})

		req := httptest.NewRequest(http.MethodPut, "/-", strings.NewReader("x"))
		req.Host = ""
		rr := httptest.NewRecorder()
		h.SubmitRaw(rr, req)

		assert.Equal(t, "/-/0aA\n", rr.Body.String())
	})

	t.Run("TooLarge", func(t *testing.T) {
		small := setUpTestServer(t, 10, Options{BasePath: "/-", MaxPasteSize: 8})
		resp, _ := small.do(t, http.MethodPut, "/-", strings.NewReader("this is more than eight bytes"), nil)

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
		assert.Equal(t, int64(1), small.metrics.Get(metrics.PasteRejectedTotal))
	})

	t.Run("ExactlyAtLimit", func(t *testing.T) {
		small := setUpTestServer(t, 10, Options{BasePath: "/-", MaxPasteSize: 8})
		resp, _ := small.do(t, http.MethodPut, "/-", strings.NewReader("12345678"), nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

/* ---------------- GET {base}/{paste} ---------------- */

func TestShowPaste(t *testing.T) {
	server := setUpTestServer(t, 10, Options{BasePath: "/-"})
	server.do(t, http.MethodPut, "/-", strings.NewReader("package main\n\nfunc main() {}\n<b>"), nil)
	server.do(t, http.MethodPut, "/-", bytes.NewReader([]byte{0xff, 0xfe}), nil)

	t.Run("Curl", func(t *testing.T) {
		resp, body := server.do(t, http.MethodGet, "/-/0aA", nil, http.Header{
			"User-Agent": {"curl/8.5.0"},
			"Accept":     {"text/html"},
		})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Equal(t, "package main\n\nfunc main() {}\n<b>", body)
	})

	t.Run("NoHTMLAccept", func(t *testing.T) {
		resp, _ := server.do(t, http.MethodGet, "/-/0aA.go", nil, http.Header{
			"User-Agent": {"Mozilla/5.0"},
			"Accept":     {"application/json"},
		})
		assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	})

	t.Run("BrowserEscaped", func(t *testing.T) {
		resp, body := server.do(t, http.MethodGet, "/-/0aA", nil, browser())

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Contains(t, body, "<code>package main</code><code></code><code>func main() {}</code>")
		assert.Contains(t, body, "<code>&lt;b&gt;</code>")
		assert.Contains(t, body, `href="/-/highlight.css"`)
	})

	t.Run("BrowserHighlighted", func(t *testing.T) {
		resp, body := server.do(t, http.MethodGet, "/-/0aA.go", nil, browser())

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `<pre class="chroma">`)
		assert.Contains(t, body, `<span class="kn">package</span>`)
	})

	t.Run("UnknownExtension", func(t *testing.T) {
		resp, _ := server.do(t, http.MethodGet, "/-/0aA.definitely-not-a-language", nil, browser())
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("NotUTF8", func(t *testing.T) {
		resp, _ := server.do(t, http.MethodGet, "/-/1aA", nil, browser())
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("Missing", func(t *testing.T) {
		resp, body := server.do(t, http.MethodGet, "/-/9zZ", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Not Found\n", body)
	})

	t.Run("Evicted", func(t *testing.T) {
		tiny := setUpTestServer(t, 1, Options{BasePath: "/-"})
		tiny.do(t, http.MethodPut, "/-", strings.NewReader("first"), nil)
		tiny.do(t, http.MethodPut, "/-", strings.NewReader("second"), nil)

		resp, _ := tiny.do(t, http.MethodGet, "/-/0aA", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, body := tiny.do(t, http.MethodGet, "/-/1aA", nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "second", body)
	})
}

/* ---------------- GET {base}/highlight.css ---------------- */

func TestHighlightCSS(t *testing.T) {
	server := setUpTestServer(t, 10, Options{BasePath: "/-"})

	resp, body := server.do(t, http.MethodGet, "/-/highlight.css", nil, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/css", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, ".chroma")
}

/* ---------------- base path ---------------- */

func TestRootBasePath(t *testing.T) {
	server := setUpTestServer(t, 10, Options{BasePath: ""})

	resp, body := server.do(t, http.MethodPut, "/", strings.NewReader("at root"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasSuffix(body, "/0aA\n"))
	assert.False(t, strings.Contains(body, "/-/"))

	_, content := server.do(t, http.MethodGet, "/0aA", nil, nil)
	assert.Equal(t, "at root", content)

	resp, _ = server.do(t, http.MethodGet, "/admin/stats", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

/* ---------------- admin ---------------- */

func TestGetHealth(t *testing.T) {
	server := setUpTestServer(t, 10, Options{BasePath: "/-"})

	resp, body := server.do(t, http.MethodGet, "/admin/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &report))

	assert.Equal(t, "OK", report["overall_status"])
	assert.Contains(t, report, "summary")
	assert.Contains(t, report, "signals")
	assert.Contains(t, report, "recommendations")
	assert.Equal(t, float64(10), report["capacity"])
}

func TestGetStats(t *testing.T) {
	server := setUpTestServer(t, 2, Options{BasePath: "/-"})
	for i := 0; i < 3; i++ {
		server.do(t, http.MethodPut, "/-", strings.NewReader("x"), nil)
	}

	_, body := server.do(t, http.MethodGet, "/admin/stats", nil, nil)

	var stats statsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &stats))
	assert.Equal(t, 2, stats.Live)
	assert.Equal(t, 2, stats.Capacity)
	assert.Equal(t, int64(3), stats.Metrics[string(metrics.PastesStoredTotal)])
	assert.Equal(t, int64(1), stats.Metrics[string(metrics.PastesEvictedTotal)])
}

func TestListPastes(t *testing.T) {
	server := setUpTestServer(t, 10, Options{BasePath: "/-", ListPastes: true})

	t.Run("EmptyStore", func(t *testing.T) {
		_, body := server.do(t, http.MethodGet, "/admin/pastes", nil, nil)

		var data []pasteInfo
		require.NoError(t, json.Unmarshal([]byte(body), &data))
		assert.Len(t, data, 0)
	})

	server.do(t, http.MethodPut, "/-", strings.NewReader("a"), nil)
	server.do(t, http.MethodPut, "/-", strings.NewReader("bbb"), nil)

	t.Run("OldestFirst", func(t *testing.T) {
		_, body := server.do(t, http.MethodGet, "/admin/pastes", nil, nil)

		var data []pasteInfo
		require.NoError(t, json.Unmarshal([]byte(body), &data))
		require.Len(t, data, 2)
		assert.Equal(t, "0aA", data[0].ID)
		assert.Equal(t, 1, data[0].Size)
		assert.Equal(t, "1aA", data[1].ID)
		assert.Equal(t, 3, data[1].Size)
		assert.NotContains(t, body, "bbb")
	})

	t.Run("Limit", func(t *testing.T) {
		_, body := server.do(t, http.MethodGet, "/admin/pastes?limit=1", nil, nil)

		var data []pasteInfo
		require.NoError(t, json.Unmarshal([]byte(body), &data))
		require.Len(t, data, 1)
		assert.Equal(t, "1aA", data[0].ID)
	})

	t.Run("BadLimit", func(t *testing.T) {
		resp, body := server.do(t, http.MethodGet, "/admin/pastes?limit=-3", nil, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var e ResponseError
		require.NoError(t, json.Unmarshal([]byte(body), &e))
		assert.Equal(t, "invalid limit", e.Message)
		assert.Equal(t, http.StatusBadRequest, e.Code)
	})
}

func TestListPastes_DisabledByDefault(t *testing.T) {
	server := setUpTestServer(t, 10, Options{BasePath: "/-"})
	server.do(t, http.MethodPut, "/-", strings.NewReader("secret"), nil)

	resp, body := server.do(t, http.MethodGet, "/admin/pastes", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotContains(t, body, "0aA")
}

/* ---------------- GET /metrics ---------------- */

func TestGetMetrics(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		server := setUpTestServer(t, 10, Options{BasePath: "/-"})

		resp, body := server.do(t, http.MethodGet, "/metrics", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, body, "metrics disabled")
	})

	t.Run("Prometheus", func(t *testing.T) {
		reg := metrics.NewRegistry()
		logger := logs.NewLogger(10, logs.DEBUG)
		promReg := metrics.NewPrometheusRegistry(reg, 10)
		svc := paste.NewService(store.New(10, reg), sequentialIDs(), logger)

		h := NewHandler(svc, reg, logger, Options{
			BasePath:     "/-",
			MaxPasteSize: 1024,
			HTTPMetrics:  metrics.NewHTTPMetrics(promReg),
			Exposition:   metrics.Handler(promReg),
		})
		server := httptest.NewServer(RegisterRoutes(mux.NewRouter(), h))
		defer server.Close()

		req, _ := http.NewRequest(http.MethodPut, server.URL+"/-", strings.NewReader("x"))
		putResp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		putResp.Body.Close()

		resp, err := http.Get(server.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "bin_pastes_stored_total 1")
		assert.Contains(t, string(body), `bin_http_requests_total{method="PUT",route="submit_raw",status="200"} 1`)
	})
}

/* ---------------- Route validation ---------------- */

func TestRouteValidation(t *testing.T) {
	server := setUpTestServer(t, 10, Options{BasePath: "/-"})
	server.do(t, http.MethodPut, "/-", strings.NewReader("x"), nil)

	t.Run("HeadIsNotAllowed", func(t *testing.T) {
		for _, path := range []string{"/-", "/-/", "/-/0aA"} {
			resp, _ := server.do(t, http.MethodHead, path, nil, nil)
			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
		}
	})

	t.Run("MethodMismatch", func(t *testing.T) {
		resp, _ := server.do(t, http.MethodDelete, "/-/0aA", nil, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		resp, body := server.do(t, http.MethodGet, "/nope/at/all", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Not Found\n", body)

		found := false
		for _, e := range server.logger.GetLast(100) {
			if e.Message == "couldn't find resource" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("OutsideBasePath", func(t *testing.T) {
		resp, _ := server.do(t, http.MethodGet, "/0aA", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
