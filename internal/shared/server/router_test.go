package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailorhire-api/internal/shared/config"
	"tailorhire-api/internal/shared/ratelimit"
	"tailorhire-api/internal/shared/telemetry"
)

func TestAddr(t *testing.T) {
	assert.Equal(t, ":8000", Addr(""))
	assert.Equal(t, ":9000", Addr("9000"))
	assert.Equal(t, ":9000", Addr(":9000"))
}

func newTestRouter(limiter *ratelimit.Limiter) http.Handler {
	return newTestRouterWithConfig(config.Config{CORSAllowOrigin: []string{"*"}}, limiter)
}

func newTestRouterWithConfig(cfg config.Config, limiter *ratelimit.Limiter) http.Handler {
	telemetry.SetOutput(&bytes.Buffer{})
	return NewRouter(RouterDeps{Config: cfg, Limiter: limiter})
}

func postFrom(r http.Handler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/optimize", nil)
	req.RemoteAddr = remoteAddr
	req.Header.Set("X-Forwarded-For", forwardedFor)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp.Code
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	r := newTestRouter(ratelimit.New(nil, 2, time.Hour))

	var codes []int
	for i := 0; i < 5; i++ {
		codes = append(codes, postFrom(r, "203.0.113.7:40000", fmt.Sprintf("198.51.100.%d", i+1)))
	}
	assert.NotEqual(t, http.StatusTooManyRequests, codes[0])
	assert.NotEqual(t, http.StatusTooManyRequests, codes[1])
	for _, code := range codes[2:] {
		assert.Equal(t, http.StatusTooManyRequests, code)
	}
}

func TestRateLimitHonoursForwardedForFromTrustedProxy(t *testing.T) {
	cfg := config.Config{CORSAllowOrigin: []string{"*"}, TrustedProxies: []string{"10.0.0.0/8"}}
	r := newTestRouterWithConfig(cfg, ratelimit.New(nil, 1, time.Hour))

	assert.NotEqual(t, http.StatusTooManyRequests, postFrom(r, "10.0.0.5:40000", "198.51.100.1"))
	assert.NotEqual(t, http.StatusTooManyRequests, postFrom(r, "10.0.0.5:40000", "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, postFrom(r, "10.0.0.5:40000", "198.51.100.1"))
}

func TestInvalidTrustedProxiesTrustNobody(t *testing.T) {
	cfg := config.Config{CORSAllowOrigin: []string{"*"}, TrustedProxies: []string{"not-an-ip"}}
	r := newTestRouterWithConfig(cfg, ratelimit.New(nil, 1, time.Hour))

	assert.NotEqual(t, http.StatusTooManyRequests, postFrom(r, "203.0.113.7:40000", "198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, postFrom(r, "203.0.113.7:40000", "198.51.100.2"))
}

func TestHealthReportsVersion(t *testing.T) {
	r := newTestRouter(nil)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.1.0", body["version"])
	_, err := time.Parse(time.RFC3339Nano, body["timestamp"])
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))
}

func TestHealthIsNotRateLimited(t *testing.T) {
	r := newTestRouter(ratelimit.New(nil, 1, time.Hour))
	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(nil)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, strings.Contains(resp.Body.String(), "optimize_requests_total"))
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	r := newTestRouter(nil)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), `"code":"not_found"`)
}

func TestLambdaPlatformKeysOnSourceIPHeader(t *testing.T) {
	cfg := config.Config{CORSAllowOrigin: []string{"*"}, TrustedPlatform: "lambda"}
	r := newTestRouterWithConfig(cfg, ratelimit.New(nil, 1, time.Hour))

	send := func(sourceIP string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/optimize", nil)
		req.RemoteAddr = ""
		req.Header.Set(LambdaSourceIPHeader, sourceIP)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		return resp.Code
	}
	assert.NotEqual(t, http.StatusTooManyRequests, send("198.51.100.1"))
	assert.NotEqual(t, http.StatusTooManyRequests, send("198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1"))
}
