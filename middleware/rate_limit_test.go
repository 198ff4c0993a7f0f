package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestLimiter(start time.Time) (*SlidingWindowLimiter, *time.Time) {
	now := start
	l := NewSlidingWindowLimiter()
	l.now = func() time.Time { return now }
	return l, &now
}

func TestSlidingWindowCheck(t *testing.T) {
	l, now := newTestLimiter(time.Unix(1000, 0))

	for i := 0; i < 3; i++ {
		if !l.Check("user:alice", 3, time.Minute) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Check("user:alice", 3, time.Minute) {
		t.Fatal("4th request within the window should be rejected")
	}

	// Rejections are not recorded: hammering at the limit must not push
	// the recovery point further out.
	for i := 0; i < 10; i++ {
		if l.Check("user:alice", 3, time.Minute) {
			t.Fatal("request should still be rejected")
		}
	}

	// Once the window elapses from the first recorded request, one slot
	// frees up.
	*now = now.Add(time.Minute + time.Second)
	if !l.Check("user:alice", 3, time.Minute) {
		t.Fatal("request after the window elapsed should be allowed")
	}
}

func TestSlidingWindowKeysIndependent(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(1000, 0))

	if !l.Check("user:alice", 1, time.Minute) {
		t.Fatal("first request for alice should be allowed")
	}
	if l.Check("user:alice", 1, time.Minute) {
		t.Fatal("second request for alice should be rejected")
	}
	if !l.Check("user:bob", 1, time.Minute) {
		t.Fatal("bob shares no window with alice")
	}
	if !l.Check("ip:10.0.0.1", 1, time.Minute) {
		t.Fatal("ip keys share no window with user keys")
	}
}

func TestSlidingWindowReset(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(1000, 0))

	if !l.Check("user:alice", 1, time.Minute) {
		t.Fatal("first request should be allowed")
	}
	if l.Check("user:alice", 1, time.Minute) {
		t.Fatal("second request should be rejected")
	}

	l.Reset()

	if !l.Check("user:alice", 1, time.Minute) {
		t.Fatal("request after Reset() should be allowed")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewSlidingWindowLimiter()
	r := gin.New()
	// Stand-in for the auth guard: stash a fixed subject.
	r.Use(func(ctx *gin.Context) {
		ctx.Set(ContextUsernameKey, ctx.GetHeader("X-Test-User"))
	})
	r.Use(RateLimit(limiter, 2, time.Minute))
	r.GET("/ping", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	do := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if got := do("alice"); got != http.StatusOK {
		t.Fatalf("1st request: got %d, want 200", got)
	}
	if got := do("alice"); got != http.StatusOK {
		t.Fatalf("2nd request: got %d, want 200", got)
	}
	if got := do("alice"); got != http.StatusTooManyRequests {
		t.Fatalf("3rd request: got %d, want 429", got)
	}

	// A different subject has its own window even from the same address.
	if got := do("bob"); got != http.StatusOK {
		t.Fatalf("request for other subject: got %d, want 200", got)
	}
}
