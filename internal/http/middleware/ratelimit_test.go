package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3, KeyByIdentityOrIP())
	r := newLimitedRouter(rl)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(0, 2, KeyByIdentityOrIP())
	r := newLimitedRouter(rl)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Errorf("Retry-After header missing")
	}
	if !strings.Contains(w.Body.String(), "too_many_requests") {
		t.Errorf("body = %q, want too_many_requests code", w.Body.String())
	}
}

func TestRateLimiter_BucketsAreIndependentPerIdentity(t *testing.T) {
	rl := NewRateLimiter(0, 1, KeyByIdentityOrIP())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity())
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Remote-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if got := send("alice"); got != http.StatusOK {
		t.Fatalf("alice first request: %d, want 200", got)
	}
	if got := send("alice"); got != http.StatusTooManyRequests {
		t.Fatalf("alice second request: %d, want 429", got)
	}
	// bob gets a separate bucket.
	if got := send("bob"); got != http.StatusOK {
		t.Fatalf("bob first request: %d, want 200", got)
	}
}

func TestKeyByIdentityOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fn := KeyByIdentityOrIP()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	if key := fn(c); !strings.HasPrefix(key, "ip:") {
		t.Errorf("anonymous key = %q, want ip: prefix", key)
	}

	c.Set(identityKey, "alice")
	if key := fn(c); key != "user:alice" {
		t.Errorf("key = %q, want user:alice", key)
	}
}
