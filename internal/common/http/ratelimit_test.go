package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/user-service/internal/common/clock"
	"github.com/AlibekovAA/user-service/internal/common/jwtverify"
)

func newTestRateLimiter(t *testing.T, window time.Duration, max int) (*RateLimiter, *clock.MockClock) {
	t.Helper()
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rl := NewRateLimiter(window, max, clk)
	t.Cleanup(rl.Stop)
	return rl, clk
}

func TestRateLimiter_AllowsUpToMax(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 15*time.Minute, 3)

	for i := 0; i < 3; i++ {
		d := rl.Allow("ip:1.2.3.4")
		require.True(t, d.Allowed, "request %d", i+1)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d := rl.Allow("ip:1.2.3.4")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, 15*time.Minute, d.RetryAfter)

	assert.True(t, rl.Allow("ip:5.6.7.8").Allowed, "keys are limited independently")
}

func TestRateLimiter_SpacedRequestsShareOneWindow(t *testing.T) {
	rl, clk := newTestRateLimiter(t, time.Minute, 3)

	allowed := 0
	for i := 0; i < 6; i++ {
		if rl.Allow("ip:1.2.3.4").Allowed {
			allowed++
		}
		clk.Advance(10 * time.Second)
	}
	assert.Equal(t, 3, allowed)

	d := rl.Allow("ip:1.2.3.4")
	assert.True(t, d.Allowed, "a new window opens once the first one closes")
	assert.Equal(t, 2, d.Remaining)
	assert.Equal(t, time.Minute, d.Reset)
}

func TestRateLimiter_ResetCountsDownToWindowEnd(t *testing.T) {
	rl, clk := newTestRateLimiter(t, time.Minute, 2)

	rl.Allow("k")
	clk.Advance(20 * time.Second)
	rl.Allow("k")

	clk.Advance(11 * time.Second)
	d := rl.Allow("k")
	require.False(t, d.Allowed)
	assert.Equal(t, 29*time.Second, d.Reset)
	assert.Equal(t, 29*time.Second, d.RetryAfter)

	clk.Advance(29 * time.Second)
	d = rl.Allow("k")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
}

func TestRateLimiter_Prune(t *testing.T) {
	rl, clk := newTestRateLimiter(t, time.Minute, 2)

	rl.Allow("a")
	rl.Allow("b")
	require.Equal(t, 2, rl.size())

	clk.Advance(10 * time.Second)
	rl.prune()
	assert.Equal(t, 2, rl.size())

	clk.Advance(time.Minute)
	rl.prune()
	assert.Equal(t, 0, rl.size())
}

func TestRateLimiter_Middleware(t *testing.T) {
	log, _ := newTestLogger(t)
	errHandler := NewErrorHandler(log, false)
	rl, _ := newTestRateLimiter(t, 15*time.Minute, 2)

	handler := rl.Middleware(errHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "192.0.2.10:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := do("/api/users")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("RateLimit-Remaining"))
	assert.Equal(t, "900", first.Header().Get("RateLimit-Reset"))

	assert.Equal(t, http.StatusOK, do("/api/users/1").Code)

	blocked := do("/api/users")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "0", blocked.Header().Get("RateLimit-Remaining"))
	assert.Equal(t, "900", blocked.Header().Get("Retry-After"))
	env := decodeEnvelope(t, blocked)
	assert.Equal(t, "Too many requests, please try again later.", env.Message)
	assert.Equal(t, http.StatusTooManyRequests, env.Status)

	health := do("/health")
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Empty(t, health.Header().Get("RateLimit-Limit"))

	assert.Equal(t, http.StatusOK, do("/apiary").Code)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.RemoteAddr = "192.0.2.10:4000"
	assert.Equal(t, "ip:192.0.2.10", ClientKey(req))

	req = req.WithContext(jwtverify.WithClaims(req.Context(), jwtverify.Claims{Subject: "42"}))
	assert.Equal(t, "sub:42", ClientKey(req))
}
