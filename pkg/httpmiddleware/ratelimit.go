package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// KeyFunc names the bucket a request is counted against.
type KeyFunc func(*http.Request) string

// RateLimitConfig configures the sliding window rate limiter.
type RateLimitConfig struct {
	// Max is the maximum number of requests allowed per window.
	Max int
	// Window is the duration of each sliding window.
	Window time.Duration
	// KeyFunc extracts the bucket key from a request. Defaults to
	// ClientIP(false).
	KeyFunc KeyFunc
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// bucket counts requests in the current and previous fixed windows. The
// sliding count weights the previous window by how much of it still overlaps
// the trailing window ending now.
type bucket struct {
	prev, curr  float64
	currStart   time.Time
	lastTouched time.Time
}

func (b *bucket) advance(now time.Time, window time.Duration) {
	switch elapsed := now.Sub(b.currStart); {
	case elapsed >= 2*window:
		b.prev, b.curr = 0, 0
		b.currStart = now.Truncate(window)
	case elapsed >= window:
		b.prev, b.curr = b.curr, 0
		b.currStart = b.currStart.Add(window)
	}
}

func (b *bucket) count(now time.Time, window time.Duration) float64 {
	overlap := 1 - now.Sub(b.currStart).Seconds()/window.Seconds()
	return b.prev*max(overlap, 0) + b.curr
}

type rateLimiter struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	buckets map[string]*bucket
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP(false)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &rateLimiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
	}
}

// allow records a request against key if it fits in the limit. It reports
// the requests left in the window and when the current window ends.
func (rl *rateLimiter) allow(key string, now time.Time) (remaining int, resetAt time.Time, allowed bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{currStart: now.Truncate(rl.cfg.Window)}
		rl.buckets[key] = b
	}
	b.advance(now, rl.cfg.Window)
	b.lastTouched = now
	resetAt = b.currStart.Add(rl.cfg.Window)

	n := b.count(now, rl.cfg.Window)
	if n >= float64(rl.cfg.Max) {
		return 0, resetAt, false
	}
	b.curr++
	return max(int(float64(rl.cfg.Max)-n-1), 0), resetAt, true
}

// cleanup drops buckets that have not been touched for two windows; by then
// both of their counters would read zero anyway.
func (rl *rateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, b := range rl.buckets {
		if now.Sub(b.lastTouched) >= 2*rl.cfg.Window {
			delete(rl.buckets, key)
		}
	}
}

func (rl *rateLimiter) startCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(2 * rl.cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rl.cleanup(now)
			}
		}
	}()
}

// RateLimit returns a middleware that enforces a per-key sliding window rate
// limit. Requests over the limit get a 429 error document and Retry-After.
// Every response carries X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset.
//
// Buckets are never evicted; use RateLimitWithCleanup for long-running
// servers.
func RateLimit(cfg RateLimitConfig) Middleware {
	return newRateLimiter(cfg).middleware
}

// RateLimitWithCleanup is RateLimit plus a goroutine that drops idle
// buckets every two windows until ctx is cancelled.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	rl := newRateLimiter(cfg)
	rl.startCleanup(ctx)
	return rl.middleware
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	limit := strconv.Itoa(rl.cfg.Max)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := rl.cfg.Now()
		remaining, resetAt, allowed := rl.allow(rl.cfg.KeyFunc(r), now)

		h := w.Header()
		h.Set("X-RateLimit-Limit", limit)
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			wait := max(resetAt.Sub(now), 0)
			h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP keys requests by client address. Forwarding headers are only
// honored when trustProxy is set: a client talking to the server directly
// could otherwise pick a new bucket per request.
func ClientIP(trustProxy bool) KeyFunc {
	return func(r *http.Request) string {
		if trustProxy {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return "ip:" + ip
				}
			}
			if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
				return "ip:" + xri
			}
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return "ip:" + r.RemoteAddr
		}
		return "ip:" + host
	}
}

// SessionKey keys requests by the session named in cookie, so shoppers
// behind one NAT get separate budgets. The cookie counts only when known
// reports a live session; forged or expired values share the fallback
// bucket.
func SessionKey(cookie string, known func(id string) bool, fallback KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		if c, err := r.Cookie(cookie); err == nil && c.Value != "" && known(c.Value) {
			return "session:" + c.Value
		}
		return fallback(r)
	}
}
