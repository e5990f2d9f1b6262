package handlers

import (
	"net/http"

	"github.com/AntiSecTech/CertVerif/internal/api/middleware"
	"github.com/AntiSecTech/CertVerif/internal/auth"
	"github.com/AntiSecTech/CertVerif/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DashboardHandler serves the admin dashboard.
type DashboardHandler struct {
	certs  *store.CertificateStore
	logger *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(certs *store.CertificateStore, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		certs:  certs,
		logger: logger,
	}
}

// Dashboard renders the registry aggregates. The admin-management controls
// are only shown to sessions with at least the admin role.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	stats, err := h.certs.Stats()
	if err != nil {
		h.logger.Error("Failed to compute dashboard stats", zap.Error(err))
		c.String(http.StatusInternalServerError, "dashboard unavailable")
		return
	}

	sess, _ := middleware.SessionFrom(c)
	c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{
		"Stats":    stats,
		"Username": sess.Username,
		"IsAdmin":  sess.Role.AtLeast(auth.RoleAdmin),
	})
}
