package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitRejectsBurstOverflow(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw := RateLimit(1, 2)
	wrapped := mw(handler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/pastoral-guidance", nil)
		req.Header.Set("X-Real-Ip", "203.0.113.7")
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected first two requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request to be limited, got %v", codes)
	}
}

func TestRateLimitIsPerIP(t *testing.T) {
	limiter := newRateLimiter(1, 1)

	if !limiter.Allow("203.0.113.1") {
		t.Fatalf("first request for ip 1 should pass")
	}
	if limiter.Allow("203.0.113.1") {
		t.Fatalf("second immediate request for ip 1 should be limited")
	}
	if !limiter.Allow("203.0.113.2") {
		t.Fatalf("different ip should have its own bucket")
	}
}

func TestRateLimitRefillsOverTime(t *testing.T) {
	limiter := newRateLimiter(2, 1)
	current := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	if !limiter.Allow("203.0.113.1") {
		t.Fatalf("first request should pass")
	}
	if limiter.Allow("203.0.113.1") {
		t.Fatalf("bucket should be empty immediately after the burst")
	}

	current = current.Add(600 * time.Millisecond)
	if !limiter.Allow("203.0.113.1") {
		t.Fatalf("bucket should refill at 2 tokens/sec")
	}
}

func TestRateLimitEvictsIdleVisitors(t *testing.T) {
	limiter := newRateLimiter(1, 1)
	current := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	limiter.Allow("203.0.113.1")
	limiter.Allow("203.0.113.2")
	if got := limiter.visitorCount(); got != 2 {
		t.Fatalf("expected 2 tracked visitors, got %d", got)
	}

	current = current.Add(11 * time.Minute)
	limiter.Allow("203.0.113.2")
	limiter.evictIdle(idleAfter)

	if got := limiter.visitorCount(); got != 1 {
		t.Fatalf("expected idle visitor to be evicted, got %d tracked", got)
	}
	if !limiter.Allow("203.0.113.1") {
		t.Fatalf("evicted visitor should start a fresh bucket")
	}
}

func TestClientIPPrefersRealIPHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if got := clientIP(req); got != "10.0.0.1:1234" {
		t.Fatalf("expected remote addr fallback, got %q", got)
	}

	req.Header.Set("X-Real-Ip", "203.0.113.9")
	if got := clientIP(req); got != "203.0.113.9" {
		t.Fatalf("expected X-Real-Ip to win, got %q", got)
	}
}
