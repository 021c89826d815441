package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	rl := NewRateLimiter(2, 3)
	defer rl.Close()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("10.0.0.1")
		require.True(t, ok, "request %d within burst", i)
	}
	ok, wait := rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, wait)

	ok, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok, "buckets are per client")

	now = now.Add(500 * time.Millisecond)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok)
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Close()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(bucketIdleAfter + time.Second)
	rl.evictIdle()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.buckets)
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	defer rl.Close()
	handler := rl.Middleware(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/calendar?specialist=anna-nowak", nil)
	req.RemoteAddr = "192.0.2.10:51000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req.RemoteAddr = "192.0.2.10:51001"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "port does not identify the client")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limited")

	for _, ip := range []string{"198.51.100.7", "198.51.100.8"} {
		req.Header.Set("X-Real-Ip", ip)
		req.Header.Set("X-Forwarded-For", ip)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, "forwarding headers do not pick the bucket")
	}

	req.RemoteAddr = "192.0.2.11:51000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
