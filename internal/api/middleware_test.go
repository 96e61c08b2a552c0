package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("throttles a client past its burst", func(t *testing.T) {
		// 2 requests per minute gives a burst of 1; the refill rate is too
		// slow to matter within the test.
		h := RateLimitMiddleware(2, time.Minute)(okHandler())

		first := doRequest(h, "/api/v1/risk-zones", "10.0.0.1:1234")
		second := doRequest(h, "/api/v1/risk-zones", "10.0.0.1:1234")

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.Equal(t, "60", second.Header().Get("Retry-After"))
	})

	t.Run("limits are per client IP", func(t *testing.T) {
		h := RateLimitMiddleware(2, time.Minute)(okHandler())

		doRequest(h, "/api/v1/risk-zones", "10.0.0.1:1234")
		other := doRequest(h, "/api/v1/risk-zones", "10.0.0.2:1234")

		assert.Equal(t, http.StatusOK, other.Code)
	})

	t.Run("exempt prefixes bypass the limiter", func(t *testing.T) {
		h := RateLimitMiddleware(2, time.Minute, "/health", "/api/v1/notify")(okHandler())

		// Exhaust the bucket on a throttled path first.
		doRequest(h, "/api/v1/risk-zones", "10.0.0.1:1234")
		doRequest(h, "/api/v1/risk-zones", "10.0.0.1:1234")

		probe := doRequest(h, "/health/db", "10.0.0.1:1234")
		dispatch := doRequest(h, "/api/v1/notify/42", "10.0.0.1:1234")

		assert.Equal(t, http.StatusOK, probe.Code)
		assert.Equal(t, http.StatusOK, dispatch.Code)
	})
}

func TestTimingMiddleware(t *testing.T) {
	h := TimingMiddleware(okHandler())

	rec := doRequest(h, "/", "10.0.0.1:1234")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))
}
