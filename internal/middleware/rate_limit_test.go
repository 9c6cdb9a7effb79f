package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkghttp "github.com/BradenHooton/tasktrack/pkg/http"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func send(h http.Handler, remoteAddr string, headers map[string]string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitByIP_BlocksAfterLimit(t *testing.T) {
	h := RateLimitByIP(RateLimitConfig{Enabled: true, RequestsPerMinute: 3})(okHandler())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, send(h, "198.51.100.1:1234", nil), "request %d", i+1)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", nil)
	req.RemoteAddr = "198.51.100.1:1234"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")

	assert.Equal(t, http.StatusOK, send(h, "198.51.100.2:1234", nil), "other clients are unaffected")
}

func TestRateLimitByIP_IgnoresSpoofedForwardingHeaders(t *testing.T) {
	h := RateLimitByIP(RateLimitConfig{Enabled: true, RequestsPerMinute: 1})(okHandler())

	assert.Equal(t, http.StatusOK, send(h, "198.51.100.1:1234", map[string]string{"X-Forwarded-For": "10.0.0.1"}))
	assert.Equal(t, http.StatusTooManyRequests, send(h, "198.51.100.1:1234", map[string]string{"X-Forwarded-For": "10.0.0.2"}))
}

func TestRateLimitByIP_TrustedProxyUsesForwardedAddress(t *testing.T) {
	ipConfig, err := pkghttp.NewIPConfig([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	h := RateLimitByIP(RateLimitConfig{Enabled: true, RequestsPerMinute: 1, IPConfig: ipConfig})(okHandler())

	assert.Equal(t, http.StatusOK, send(h, "10.1.1.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.5"}))
	assert.Equal(t, http.StatusOK, send(h, "10.1.1.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.6"}))
	assert.Equal(t, http.StatusTooManyRequests, send(h, "10.1.1.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.5"}))
}

func TestRateLimitByIP_RotatingPrependedAddressesShareOneBucket(t *testing.T) {
	ipConfig, err := pkghttp.NewIPConfig([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	h := RateLimitByIP(RateLimitConfig{Enabled: true, RequestsPerMinute: 2, IPConfig: ipConfig})(okHandler())

	limited := 0
	for i := 0; i < 10; i++ {
		xff := fmt.Sprintf("192.0.2.%d, 198.51.100.9", i+1)
		if send(h, "10.0.0.1:1234", map[string]string{"X-Forwarded-For": xff}) == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Equal(t, 8, limited)
}

func TestRateLimitByIP_Disabled(t *testing.T) {
	h := RateLimitByIP(RateLimitConfig{Enabled: false, RequestsPerMinute: 1})(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, send(h, "198.51.100.1:1234", nil))
	}
}
