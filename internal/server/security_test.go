package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSecurityConfig(t *testing.T) {
	c := DefaultSecurityConfig()
	assert.True(t, c.EnableCORS)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.ElementsMatch(t, []string{"GET", "POST", "OPTIONS"}, c.AllowedMethods)
	assert.EqualValues(t, 1<<20, c.MaxBodyBytes)
	assert.Equal(t, 20_000, c.MaxSequenceLength)
	assert.Equal(t, 4*runtime.NumCPU(), c.MaxWorkers)
}

// TestSecurityHeadersOnEveryRoute checks the hardening headers on the
// computation, listing and health routes alike.
func TestSecurityHeadersOnEveryRoute(t *testing.T) {
	s := newTestServer(t, nil)
	requests := []*http.Request{
		httptest.NewRequest(http.MethodPost, "/v1/lcs", strings.NewReader(`{"a":"ACGT","b":"AGCT"}`)),
		httptest.NewRequest(http.MethodGet, "/v1/strategies", http.NoBody),
		httptest.NewRequest(http.MethodGet, "/health", http.NoBody),
	}
	for _, req := range requests {
		t.Run(req.Method+" "+req.URL.Path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			h := rec.Header()
			assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
			assert.Equal(t, "1; mode=block", h.Get("X-XSS-Protection"))
			assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
			assert.Contains(t, h.Get("Content-Security-Policy"), "frame-ancestors 'none'")
		})
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		enable     bool
		allowed    []string
		origin     string
		wantOrigin string
	}{
		{"wildcard", true, []string{"*"}, "https://lab.example", "*"},
		{"listed origin echoed", true, []string{"https://lab.example"}, "https://lab.example", "https://lab.example"},
		{"unlisted origin", true, []string{"https://lab.example"}, "https://other.example", ""},
		{"no origin header", true, []string{"https://lab.example"}, "", ""},
		{"disabled", false, []string{"*"}, "https://lab.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, func(c *Config) {
				c.Security.EnableCORS = tt.enable
				c.Security.AllowedOrigins = tt.allowed
			})
			req := httptest.NewRequest(http.MethodGet, "/v1/strategies", http.NoBody)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantOrigin != "" {
				assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Request-ID")
			}
		})
	}
}

func TestPreflightSkipsComputation(t *testing.T) {
	called := false
	h := SecurityMiddleware(DefaultSecurityConfig(), func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	req := httptest.NewRequest(http.MethodOptions, "/v1/lcs", http.NoBody)
	req.Header.Set("Origin", "https://lab.example")
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, called, "a preflight must not reach the handler")
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}

func TestBodyLimit(t *testing.T) {
	t.Run("middleware truncates reads", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.MaxBodyBytes = 8
		var readErr error
		h := SecurityMiddleware(cfg, func(w http.ResponseWriter, r *http.Request) {
			_, readErr = io.ReadAll(r.Body)
		})
		h(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/lcs", strings.NewReader(`{"a":"ACGTACGT"}`)))

		var maxErr *http.MaxBytesError
		require.ErrorAs(t, readErr, &maxErr)
		assert.EqualValues(t, 8, maxErr.Limit)
	})

	t.Run("oversized request rejected", func(t *testing.T) {
		s := newTestServer(t, func(c *Config) { c.Security.MaxBodyBytes = 32 })
		body := `{"a":"` + strings.Repeat("ACGT", 16) + `","b":"ACGT"}`
		rec := postLCS(t, s.Handler(), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid request body")
	})

	t.Run("zero disables the limit", func(t *testing.T) {
		s := newTestServer(t, func(c *Config) { c.Security.MaxBodyBytes = 0 })
		body := `{"a":"` + strings.Repeat("ACGT", 64) + `","b":"GATTACA","strategy":"sequential"}`
		rec := postLCS(t, s.Handler(), body)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
}

func TestWorkerLimit(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.Security.MaxWorkers = 4 })

	tests := []struct {
		name string
		body string
		code int
	}{
		{"at the limit", `{"a":"GATTACA","b":"TAGATCA","workers":4}`, http.StatusOK},
		{"ranks at the limit", `{"a":"GATTACA","b":"TAGATCA","strategy":"distributed","processes":4}`, http.StatusOK},
		{"workers over", `{"a":"GATTACA","b":"TAGATCA","workers":5}`, http.StatusBadRequest},
		{"processes over", `{"a":"GATTACA","b":"TAGATCA","strategy":"distributed","processes":1000000}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLCS(t, s.Handler(), tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}

	t.Run("zero disables the limit", func(t *testing.T) {
		open := newTestServer(t, func(c *Config) { c.Security.MaxWorkers = 0 })
		rec := postLCS(t, open.Handler(), `{"a":"GATTACA","b":"TAGATCA","workers":6}`)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
}
