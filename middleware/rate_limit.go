package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vibelab/vibe/utils"
)

// SlidingWindowLimiter gates requests by counting them inside a trailing
// time window per identity key. It is deliberately not a token bucket:
// bursts are capped strictly by count, rejected attempts are not recorded,
// and there is no smoothing. Construct one per process and inject it so
// lifetime and test-reset semantics stay explicit.
type SlidingWindowLimiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time

	// now is swappable in tests.
	now func() time.Time
}

// NewSlidingWindowLimiter creates an empty limiter.
func NewSlidingWindowLimiter() *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

// Check records one request for key and reports whether it is allowed.
// Timestamps older than the window are dropped first; when the remaining
// count has reached max the attempt is rejected without being recorded.
// The lock covers only the read-trim-append sequence, never I/O.
func (l *SlidingWindowLimiter) Check(key string, max int, window time.Duration) bool {
	now := l.now()
	cutoff := now.Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()

	times := l.hits[key]
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

// Reset clears all recorded state. Test isolation only.
func (l *SlidingWindowLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hits = make(map[string][]time.Time)
}

// RateLimit rejects requests exceeding max within the trailing window. The
// identity key is the authenticated subject when present, otherwise the
// caller's network address; an unknown address shares the "anon" bucket.
func RateLimit(limiter *SlidingWindowLimiter, max int, window time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !limiter.Check(identityKey(ctx), max, window) {
			utils.Error(ctx, http.StatusTooManyRequests, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func identityKey(ctx *gin.Context) string {
	if username := ctx.GetString(ContextUsernameKey); username != "" {
		return "user:" + username
	}
	if ip := ctx.ClientIP(); ip != "" {
		return "ip:" + ip
	}
	return "ip:anon"
}
