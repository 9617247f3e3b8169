package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/lcscalc/internal/lcs"
)

func newTestServer(t *testing.T, mutate func(*Config)) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Listen = "127.0.0.1:0"
	cfg.Workers = 2
	cfg.Processes = 2
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewServer(lcs.NewDefaultFactory(), cfg, newTestLogger())
	require.NoError(t, err)
	t.Cleanup(s.cache.close)
	return s
}

func postLCS(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/lcs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleLCS(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	for _, strategy := range []string{lcs.StrategySequential, lcs.StrategyWavefront, lcs.StrategyDistributed} {
		t.Run(strategy, func(t *testing.T) {
			rec := postLCS(t, s.Handler(), `{"a":"GATTACA","b":"TAGATCA","strategy":"`+strategy+`"}`)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, strategy, resp.Strategy)
			assert.Equal(t, 5, resp.Length)
			assert.Equal(t, "GATCA", resp.LCS)
			assert.Equal(t, 7, resp.M)
			assert.Equal(t, 7, resp.N)
			_, err := uuid.Parse(resp.RequestID)
			assert.NoError(t, err)
			assert.Equal(t, resp.RequestID, rec.Header().Get("X-Request-ID"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestHandleLCS_Defaults(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := postLCS(t, s.Handler(), `{"a":"ACGT","b":"AGCT"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, lcs.StrategyWavefront, resp.Strategy)
	assert.Equal(t, 2, resp.Workers)
	assert.Equal(t, "ACT", resp.LCS)
}

func TestHandleLCS_CacheHit(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	body := `{"a":"ACGTACGT","b":"TGCA","strategy":"sequential"}`

	first := postLCS(t, s.Handler(), body)
	require.Equal(t, http.StatusOK, first.Code)
	s.cache.c.Wait()

	second := postLCS(t, s.Handler(), body)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b Response
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.False(t, a.Cached)
	assert.True(t, b.Cached)
	assert.Equal(t, a.LCS, b.LCS)
	assert.NotEqual(t, a.RequestID, b.RequestID)
}

func TestHandleLCS_Errors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, func(c *Config) {
		c.Security.MaxSequenceLength = 16
		c.Security.MaxWorkers = 8
	})

	tests := []struct {
		name string
		body string
		code int
		msg  string
	}{
		{"malformed json", `{"a":`, http.StatusBadRequest, "invalid request body"},
		{"unknown field", `{"a":"A","b":"C","x":1}`, http.StatusBadRequest, "invalid request body"},
		{"invalid symbol", `{"a":"ACGN","b":"ACGT"}`, http.StatusBadRequest, "N"},
		{"unknown strategy", `{"a":"A","b":"A","strategy":"quantum"}`, http.StatusBadRequest, "quantum"},
		{"bad trace", `{"a":"A","b":"A","trace":"everything"}`, http.StatusBadRequest, "trace"},
		{"negative workers", `{"a":"A","b":"A","workers":-1}`, http.StatusBadRequest, "negative"},
		{"too long", `{"a":"` + strings.Repeat("A", 17) + `","b":"A"}`, http.StatusBadRequest, "limited"},
		{"too many workers", `{"a":"ACGT","b":"AGCT","strategy":"wavefront","workers":1099511627776}`, http.StatusBadRequest, "limited to 8"},
		{"too many processes", `{"a":"ACGT","b":"AGCT","strategy":"distributed","processes":9}`, http.StatusBadRequest, "limited to 8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLCS(t, s.Handler(), tt.body)
			assert.Equal(t, tt.code, rec.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tt.msg)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestHandleLCS_AnyAlphabet(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := postLCS(t, s.Handler(), `{"a":"kitten","b":"sitting","alphabet":"any","strategy":"sequential"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Length)
}

func TestRequestIDPropagation(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set("X-Request-ID", id)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get("X-Request-ID"))
}

func TestHandleStrategies(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/strategies", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.ElementsMatch(t,
		[]string{lcs.StrategySequential, lcs.StrategyWavefront, lcs.StrategyDistributed},
		body["strategies"])
}

func TestRouting_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/lcs", http.NoBody))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(context.Canceled))
	assert.Equal(t, http.StatusBadGateway, statusFor(&lcs.PartitionUnavailableError{Rank: 1, Row: 3}))
	assert.Equal(t, http.StatusBadRequest, statusFor(&lcs.InvalidSymbolError{Sequence: "a", Symbol: 'N'}))
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String()
	resp, err := http.Post(url+"/v1/lcs", "application/json", bytes.NewBufferString(`{"a":"ACGT","b":"AGCT"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
