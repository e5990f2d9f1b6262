package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/AntiSecTech/CertVerif/internal/api/middleware"
	"github.com/AntiSecTech/CertVerif/internal/auth"
	"github.com/AntiSecTech/CertVerif/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler handles administrator account management. All of its routes
// are gated on the admin role by the router.
type AdminHandler struct {
	admins *store.AdminStore
	logger *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admins *store.AdminStore, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		admins: admins,
		logger: logger,
	}
}

// ListPage renders the administrator list. Password hashes never reach the
// template: the store strips them before they leave.
func (h *AdminHandler) ListPage(c *gin.Context) {
	admins, err := h.admins.List()
	if err != nil {
		h.logger.Error("Failed to list administrators", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load administrators")
		return
	}

	data, err := json.Marshal(admins)
	if err != nil {
		h.logger.Error("Failed to encode administrators", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load administrators")
		return
	}

	c.HTML(http.StatusOK, "admins_list.html", gin.H{
		"AdminsJSON": template.JS(data),
	})
}

// NewForm renders the empty administrator form.
func (h *AdminHandler) NewForm(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_form.html", gin.H{
		"AdminJSON": template.JS("{}"),
	})
}

// EditForm renders the form pre-filled with an existing administrator.
func (h *AdminHandler) EditForm(c *gin.Context) {
	username := c.Param("username")

	admin, err := h.admins.Get(username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.String(http.StatusNotFound, "administrator not found")
			return
		}
		h.logger.Error("Failed to load administrator", zap.String("username", username), zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load administrator")
		return
	}

	data, err := json.Marshal(admin)
	if err != nil {
		h.logger.Error("Failed to encode administrator", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load administrator")
		return
	}

	c.HTML(http.StatusOK, "admin_form.html", gin.H{
		"AdminJSON": template.JS(data),
	})
}

// Create handles the new-administrator form post. A session below the admin
// role may not create admin or superadmin accounts.
func (h *AdminHandler) Create(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	role, err := auth.ParseRole(c.DefaultPostForm("role", "user"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, _ := middleware.SessionFrom(c)
	if role.AtLeast(auth.RoleAdmin) && !sess.Role.AtLeast(auth.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions to create admin accounts"})
		return
	}

	if err := auth.ValidatePasswordStrength(password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, err := h.admins.Create(username, password, role)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username already exists"})
			return
		}
		h.logger.Error("Failed to create administrator", zap.String("username", username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create administrator"})
		return
	}

	h.logger.Info("Administrator created",
		zap.String("username", admin.Username),
		zap.String("role", admin.Role.String()),
		zap.String("created_by", sess.Username),
	)

	c.Redirect(http.StatusFound, "/admin/admins")
}

// Update handles the edit form PUT. The password is only changed when a new
// one is supplied; an omitted role keeps the current one.
func (h *AdminHandler) Update(c *gin.Context) {
	username := c.Param("username")

	role, err := h.resolveRole(c, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "administrator not found"})
		return
	case err != nil && c.PostForm("role") != "":
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("Failed to load administrator", zap.String("username", username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update administrator"})
		return
	}

	password := c.PostForm("password")
	if err := h.admins.Update(username, password, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "administrator not found"})
			return
		}
		h.logger.Error("Failed to update administrator", zap.String("username", username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update administrator"})
		return
	}

	h.logger.Info("Administrator updated", zap.String("username", username))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete removes an administrator. The main "admin" account is protected
// regardless of who asks.
func (h *AdminHandler) Delete(c *gin.Context) {
	username := c.Param("username")

	if err := h.admins.Delete(username); err != nil {
		switch {
		case errors.Is(err, store.ErrProtectedAccount):
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot delete main administrator account"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "administrator not found"})
		default:
			h.logger.Error("Failed to delete administrator", zap.String("username", username), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete administrator"})
		}
		return
	}

	h.logger.Info("Administrator deleted", zap.String("username", username))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// resolveRole parses the posted role, falling back to the account's current
// role when the form omits it.
func (h *AdminHandler) resolveRole(c *gin.Context, username string) (auth.Role, error) {
	roleStr := c.PostForm("role")
	if roleStr == "" {
		existing, err := h.admins.Get(username)
		if err != nil {
			return auth.RoleUser, err
		}
		return existing.Role, nil
	}
	return auth.ParseRole(roleStr)
}
