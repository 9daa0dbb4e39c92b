package http

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AlibekovAA/user-service/internal/common/clock"
	"github.com/AlibekovAA/user-service/internal/common/constants"
	commonerrors "github.com/AlibekovAA/user-service/internal/common/errors"
	"github.com/AlibekovAA/user-service/internal/common/httpmetrics"
	"github.com/AlibekovAA/user-service/internal/common/jwtverify"
	"github.com/AlibekovAA/user-service/internal/observability/metrics"
)

// RateLimiter allows max requests per window and per client key. A key's
// window opens on its first request and closes window later; within it the
// key draws from a zero-rate limiter whose burst is the whole quota, so
// nothing refills until the next window.
type RateLimiter struct {
	windows  map[string]*clientWindow
	mu       sync.Mutex
	window   time.Duration
	max      int
	clock    clock.Clock
	stop     chan struct{}
	stopOnce sync.Once
}

type clientWindow struct {
	limiter *rate.Limiter
	resetAt time.Time
}

type RateDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Reset      time.Duration
	RetryAfter time.Duration
}

func NewRateLimiter(window time.Duration, max int, clk clock.Clock) *RateLimiter {
	if window <= 0 {
		window = constants.DefaultRateLimitWindow
	}
	if max <= 0 {
		max = constants.DefaultRateLimitMax
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}

	rl := &RateLimiter{
		windows: make(map[string]*clientWindow),
		window:  window,
		max:     max,
		clock:   clk,
		stop:    make(chan struct{}),
	}

	go rl.cleanupWindows(constants.RateLimitCleanupInterval)

	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupWindows(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

// prune drops windows that have closed; the next request for the key opens
// a fresh one.
func (rl *RateLimiter) prune() {
	now := rl.clock.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, w := range rl.windows {
		if !now.Before(w.resetAt) {
			delete(rl.windows, key)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}

func (rl *RateLimiter) currentWindow(key string, now time.Time) *clientWindow {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &clientWindow{
			limiter: rate.NewLimiter(0, rl.max),
			resetAt: now.Add(rl.window),
		}
		rl.windows[key] = w
	}
	return w
}

func (rl *RateLimiter) Allow(key string) RateDecision {
	now := rl.clock.Now()
	w := rl.currentWindow(key, now)

	allowed := w.limiter.AllowN(now, 1)
	reset := w.resetAt.Sub(now)

	d := RateDecision{
		Allowed:   allowed,
		Limit:     rl.max,
		Remaining: max(0, w.limiter.Burst()),
		Reset:     reset,
	}
	if !allowed {
		d.RetryAfter = reset
	}
	return d
}

// Middleware limits requests under the API prefix; other paths pass
// through untouched.
func (rl *RateLimiter) Middleware(errHandler *ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !underPrefix(r.URL.Path, constants.APIPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			d := rl.Allow(ClientKey(r))

			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("RateLimit-Reset", strconv.Itoa(ceilSeconds(d.Reset)))

			if !d.Allowed {
				h.Set("Retry-After", strconv.Itoa(ceilSeconds(d.RetryAfter)))
				metrics.RateLimitBlocked.WithLabelValues(httpmetrics.NormalizePath(r.URL.Path)).Inc()
				errHandler.HandleError(w, r, commonerrors.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey prefers the bearer token subject, falling back to the client IP.
func ClientKey(r *http.Request) string {
	if claims, ok := jwtverify.FromContext(r.Context()); ok && claims.Subject != "" {
		return "sub:" + claims.Subject
	}
	return "ip:" + ClientIP(r)
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
