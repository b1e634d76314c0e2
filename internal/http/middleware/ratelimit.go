package middleware

import (
	"net/http"
	"sync"
	"time"
)

// Idle-visitor eviction knobs. Guidance sessions are short lived, so a
// visitor quiet for ten minutes can be forgotten without losing fairness.
const (
	sweepInterval = 5 * time.Minute
	idleAfter     = 10 * time.Minute
)

// visitor is the token-bucket state for one client IP.
type visitor struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP with a token bucket. Buckets
// refill at rate tokens per second up to burst; idle visitors are swept so
// the map stays bounded under churn.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     float64
	burst    float64

	now func() time.Time // stubbed in tests
}

// NewRateLimiter creates a limiter and starts the idle-visitor sweeper.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	rl := newRateLimiter(rate, burst)
	go rl.sweep()
	return rl
}

func newRateLimiter(rate float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		burst:    float64(burst),
		now:      time.Now,
	}
}

// Allow reports whether one more request from ip fits in its bucket.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &visitor{tokens: rl.burst - 1, lastSeen: now}
		return true
	}

	v.tokens += now.Sub(v.lastSeen).Seconds() * rl.rate
	if v.tokens > rl.burst {
		v.tokens = rl.burst
	}
	v.lastSeen = now

	if v.tokens < 1 {
		return false
	}
	v.tokens--
	return true
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		rl.evictIdle(idleAfter)
	}
}

// evictIdle drops visitors that have been quiet longer than idle.
func (rl *RateLimiter) evictIdle(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-idle)
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *RateLimiter) visitorCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// RateLimit rejects requests over the per-IP budget with 429 Too Many
// Requests and a Retry-After hint.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the X-Real-Ip header set by chi's RealIP middleware.
func clientIP(r *http.Request) string {
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
