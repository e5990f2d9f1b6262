// Package middleware provides HTTP middleware for the CertVerif server:
// session authentication, role-based authorization, request logging, request
// IDs, and CORS.
package middleware

import (
	"net/http"

	"github.com/AntiSecTech/CertVerif/internal/auth"
	"github.com/AntiSecTech/CertVerif/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "session_id"

// sessionKey is the gin context key holding the validated session.
const sessionKey = "session"

// RequireSession validates the session cookie against the session manager.
// Requests without a live session are redirected to the login page, the way
// a browser-facing admin area expects.
func RequireSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}

		sess, ok := sessions.Validate(token)
		if !ok {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// RequireRole rejects requests whose session role does not satisfy min.
// Superadmin satisfies admin-gated checks through the role ordering.
func RequireRole(min auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "no session in context"})
			c.Abort()
			return
		}

		if !sess.Role.AtLeast(min) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// SessionFrom returns the session stored by RequireSession.
func SessionFrom(c *gin.Context) (session.Session, bool) {
	value, exists := c.Get(sessionKey)
	if !exists {
		return session.Session{}, false
	}
	sess, ok := value.(session.Session)
	return sess, ok
}
