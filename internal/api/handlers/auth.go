package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/AntiSecTech/CertVerif/internal/api/middleware"
	"github.com/AntiSecTech/CertVerif/internal/session"
	"github.com/AntiSecTech/CertVerif/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles admin login and logout.
type AuthHandler struct {
	admins       *store.AdminStore
	sessions     *session.Manager
	cookieSecure bool
	cookieMaxAge time.Duration
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(admins *store.AdminStore, sessions *session.Manager, cookieSecure bool, ttl time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		admins:       admins,
		sessions:     sessions,
		cookieSecure: cookieSecure,
		cookieMaxAge: ttl,
		logger:       logger,
	}
}

// ShowLogin serves the login form. A failed attempt redirects back here
// with ?error=1 so the template can show the message.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_login.html", gin.H{
		"Error": c.Query("error") != "",
	})
}

// Login authenticates the posted credentials, mints a session, and sets the
// session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	admin, err := h.admins.Authenticate(username, password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			h.logger.Warn("Login failed", zap.String("username", username))
			c.Redirect(http.StatusFound, "/admin/login?error=1")
			return
		}
		h.logger.Error("Login storage failure", zap.Error(err))
		c.String(http.StatusInternalServerError, "login unavailable")
		return
	}

	sess, err := h.sessions.Create(admin.Username, admin.Role)
	if err != nil {
		h.logger.Error("Failed to create session", zap.Error(err))
		c.String(http.StatusInternalServerError, "login unavailable")
		return
	}

	h.logger.Info("User logged in",
		zap.String("username", admin.Username),
		zap.String("role", admin.Role.String()),
	)

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, sess.Token, int(h.cookieMaxAge.Seconds()), "/", "", h.cookieSecure, true)
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

// Logout destroys the session and clears the cookie with a past-dated
// expiry, then sends the browser back to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		h.sessions.Destroy(token)
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.cookieSecure, true)
	c.Redirect(http.StatusFound, "/admin/login")
}
