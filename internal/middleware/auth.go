package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Authenticator reports whether a user is signed in on this device.
type Authenticator interface {
	Authenticated(ctx context.Context) bool
}

// RequireAuth lets the request through only while someone is signed in.
// Otherwise it answers 401 and points the caller at the sign-in route.
func RequireAuth(guard Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !guard.Authenticated(c.Request.Context()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Sign in required", "redirect": "/signup"})
			return
		}
		c.Next()
	}
}

// RedirectIfAuthenticated is the inverse of RequireAuth, for sign-up and
// sign-in routes: a signed-in caller gets 409 and a hint to the dashboard.
func RedirectIfAuthenticated(guard Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if guard.Authenticated(c.Request.Context()) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Already signed in", "redirect": "/dashboard"})
			return
		}
		c.Next()
	}
}
