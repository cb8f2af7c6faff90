package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/campusgate/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = addr
	return req
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"remote address", nil, "192.168.1.1"},
		{"forwarded for wins", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1", "X-Real-IP": "203.0.113.9"}, "203.0.113.1"},
		{"real ip", map[string]string{"X-Real-IP": " 203.0.113.2 "}, "203.0.113.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestFrom("192.168.1.1:12345")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.ClientIP(req))
		})
	}
}

func TestRateLimitBy(t *testing.T) {
	t.Run("blocks over the burst", func(t *testing.T) {
		h := httpx.RateLimitBy(httpx.RateLimit{Requests: 3, Window: time.Minute, Burst: 3}, httpx.ClientIP)(okHandler)

		for i := range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "20", rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("keys are independent", func(t *testing.T) {
		h := httpx.RateLimitBy(httpx.RateLimit{Requests: 1, Window: time.Minute, Burst: 1}, httpx.ClientIP)(okHandler)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:2"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code, "port does not matter")

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.2:1"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("empty key is not limited", func(t *testing.T) {
		h := httpx.RateLimitBy(httpx.RateLimit{Requests: 1, Window: time.Minute, Burst: 1},
			func(*http.Request) string { return "" })(okHandler)

		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("anonymous callers are keyed by ip", func(t *testing.T) {
		require.Equal(t, "ip:192.168.1.1", httpx.SubjectOrIP(requestFrom("192.168.1.1:1")))
	})
}

func TestLimitFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_TEST_REQUESTS", "7")
	t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
	t.Setenv("RATELIMIT_TEST_BURST", "-1")

	got := httpx.LimitFromEnv("TEST", httpx.RateLimit{Requests: 1, Window: time.Minute, Burst: 2})
	require.Equal(t, httpx.RateLimit{Requests: 7, Window: 30 * time.Second, Burst: 2}, got)
}

func TestProfiles(t *testing.T) {
	for name, lim := range map[string]httpx.RateLimit{
		"fetch": httpx.FetchLimit,
		"admin": httpx.AdminLimit,
		"read":  httpx.ReadLimit,
	} {
		t.Run(name, func(t *testing.T) {
			require.Positive(t, lim.Requests)
			require.Positive(t, lim.Window)
			require.Positive(t, lim.Burst)
		})
	}
	require.Less(t, httpx.AdminLimit.Requests, httpx.FetchLimit.Requests)
	require.Less(t, httpx.FetchLimit.Requests, httpx.ReadLimit.Requests)
}
