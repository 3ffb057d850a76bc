package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-board-backend/internal/tracking"
)

func newTrackingRouter(t *testing.T, tr *tracking.Tracker, ttl time.Duration) (*gin.Engine, *string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity())
	r.Use(Tracking(tr, ttl))

	seen := new(string)
	r.GET("/x", func(c *gin.Context) {
		*seen = TrackingIDFrom(c)
		c.String(http.StatusOK, "ok")
	})
	return r, seen
}

func TestTracking_MintsCookieOnFirstVisit(t *testing.T) {
	tr := tracking.New("test-secret")
	r, seen := newTrackingRouter(t, tr, 24*time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Remote-User", "alice")
	w := httptest.NewRecorder()

	before := time.Now()
	r.ServeHTTP(w, req)

	cookies := w.Result().Cookies()
	var ck *http.Cookie
	for _, c := range cookies {
		if c.Name == tracking.CookieName {
			ck = c
		}
	}
	if ck == nil {
		t.Fatalf("no %s cookie set", tracking.CookieName)
	}
	if ck.Value == "" || ck.Value != *seen {
		t.Errorf("cookie value %q does not match context value %q", ck.Value, *seen)
	}
	if !ck.HttpOnly || ck.Path != "/" {
		t.Errorf("cookie attributes = HttpOnly=%v Path=%q, want HttpOnly=true Path=/", ck.HttpOnly, ck.Path)
	}

	wantExpiry := before.Add(24 * time.Hour)
	if ck.Expires.Before(wantExpiry.Add(-time.Minute)) || ck.Expires.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("cookie expiry = %v, want ~%v", ck.Expires, wantExpiry)
	}

	if !tr.Validate(ck.Value, "alice") {
		t.Errorf("minted cookie %q does not validate for its owner", ck.Value)
	}
}

func TestTracking_KeepsValidCookie(t *testing.T) {
	tr := tracking.New("test-secret")
	r, seen := newTrackingRouter(t, tr, 24*time.Hour)

	// First visit mints.
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Remote-User", "alice")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var minted string
	for _, c := range w.Result().Cookies() {
		if c.Name == tracking.CookieName {
			minted = c.Value
		}
	}
	if minted == "" {
		t.Fatalf("first visit did not mint a cookie")
	}

	// Replay: the valid cookie must survive unrotated and no Set-Cookie issued.
	req2 := httptest.NewRequest(http.MethodGet, "/x", nil)
	req2.Header.Set("Remote-User", "alice")
	req2.AddCookie(&http.Cookie{Name: tracking.CookieName, Value: minted})
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	if len(w2.Result().Cookies()) != 0 {
		t.Errorf("valid cookie was rotated: %v", w2.Result().Cookies())
	}
	if *seen != minted {
		t.Errorf("context tracking id = %q, want %q", *seen, minted)
	}
}

func TestTracking_RemintsForDifferentUser(t *testing.T) {
	tr := tracking.New("test-secret")
	r, seen := newTrackingRouter(t, tr, 24*time.Hour)

	// Mint for alice.
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Remote-User", "alice")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var aliceCookie string
	for _, c := range w.Result().Cookies() {
		if c.Name == tracking.CookieName {
			aliceCookie = c.Value
		}
	}

	// Present alice's cookie as bob: a fresh identity must be minted.
	req2 := httptest.NewRequest(http.MethodGet, "/x", nil)
	req2.Header.Set("Remote-User", "bob")
	req2.AddCookie(&http.Cookie{Name: tracking.CookieName, Value: aliceCookie})
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	if len(w2.Result().Cookies()) == 0 {
		t.Fatalf("expected a fresh cookie for bob")
	}
	if *seen == aliceCookie {
		t.Errorf("bob inherited alice's tracking identity")
	}
}

func TestTracking_RemintsForTamperedCookie(t *testing.T) {
	tr := tracking.New("test-secret")
	r, _ := newTrackingRouter(t, tr, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Remote-User", "alice")
	req.AddCookie(&http.Cookie{Name: tracking.CookieName, Value: "12345_forgedhash"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var fresh string
	for _, c := range w.Result().Cookies() {
		if c.Name == tracking.CookieName {
			fresh = c.Value
		}
	}
	if fresh == "" {
		t.Fatalf("tampered cookie was accepted without a remint")
	}
	if fresh == "12345_forgedhash" {
		t.Errorf("tampered value echoed back")
	}
}
