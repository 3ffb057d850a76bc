// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the authenticated identity. Credential checking itself
// happens upstream (a basic-auth reverse proxy), which forwards the resolved
// user name in the Remote-User header; the core treats that value as an
// opaque non-empty string. "admin" is the reserved privileged identity.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// identityKey is the Gin context key under which the identity is stored.
	identityKey = "identity"
	// identityHeader carries the identity resolved by the upstream
	// authenticator (Authelia-style forward auth).
	identityHeader = "Remote-User"
)

// IdentityFrom returns the authenticated identity stored by Identity(),
// or "" when the request is unauthenticated.
func IdentityFrom(c *gin.Context) string {
	if v, ok := c.Get(identityKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Identity returns a Gin middleware that extracts the authenticated identity
// from the forward-auth header and stores it in the context. Requests without
// an identity are rejected with 401; the proxy is expected to have already
// challenged for credentials.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(identityHeader))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "unauthorized",
				"message":    "authentication required",
			})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}
