// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file applies the tracking-identity cookie on every request: an
// incoming cookie that validates for the authenticated identity is kept
// as-is (never rotated while valid); anything else triggers a fresh mint and
// a Set-Cookie with the configured expiry. The resolved value is stashed in
// the Gin context for handlers to record.
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-board-backend/internal/tracking"
)

// trackingIDKey is the Gin context key for the resolved tracking identity.
const trackingIDKey = "trackingID"

// TrackingIDFrom returns the tracking identity resolved for this request,
// or "" when the Tracking middleware did not run (e.g. unauthenticated).
func TrackingIDFrom(c *gin.Context) string {
	if v, ok := c.Get(trackingIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Tracking returns a Gin middleware implementing the validate-or-mint cookie
// policy. It must run after Identity(), since tracking identities are bound
// to the authenticated user name.
func Tracking(tr *tracking.Tracker, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFrom(c)

		existing, _ := c.Cookie(tracking.CookieName)
		id, minted := tr.Resolve(existing, identity)
		if minted {
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     tracking.CookieName,
				Value:    id,
				Path:     "/",
				Expires:  time.Now().Add(ttl),
				HttpOnly: true,
			})
		}
		c.Set(trackingIDKey, id)
		c.Next()
	}
}
