// Package handlers provides the HTTP request handlers for CertVerif: public
// certificate verification, admin login/logout, the dashboard, and the
// certificate and administrator management endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/AntiSecTech/CertVerif/internal/verify"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VerifyHandler serves the public verification endpoints.
type VerifyHandler struct {
	engine *verify.Engine
	logger *zap.Logger
}

// NewVerifyHandler creates a new verify handler
func NewVerifyHandler(engine *verify.Engine, logger *zap.Logger) *VerifyHandler {
	return &VerifyHandler{
		engine: engine,
		logger: logger,
	}
}

// verdictView is the view model for the verify.html template.
type verdictView struct {
	Icon        string
	Message     string
	StatusClass string
	Payload     string
}

// Index serves the landing page with the verification form.
func (h *VerifyHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

// VerifyPage serves the HTML verdict for /verify/:cert_number, the target
// of QR codes and the landing page form.
func (h *VerifyHandler) VerifyPage(c *gin.Context) {
	result := h.verify(c)
	c.HTML(http.StatusOK, "verify.html", verdictToView(result))
}

// VerifyAPI serves /api/verify/:cert_number. Clients that accept JSON get
// the raw verdict; everyone else gets the HTML page.
func (h *VerifyHandler) VerifyAPI(c *gin.Context) {
	result := h.verify(c)

	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.JSON(http.StatusOK, result)
		return
	}
	c.HTML(http.StatusOK, "verify.html", verdictToView(result))
}

func (h *VerifyHandler) verify(c *gin.Context) verify.Result {
	return h.engine.Verify(
		c.Param("cert_number"),
		c.Query("firstName"),
		c.Query("lastName"),
	)
}

func verdictToView(result verify.Result) verdictView {
	view := verdictView{}

	switch result.Status {
	case verify.StatusValid:
		view.Icon, view.Message, view.StatusClass = "verified", "Valid Certificate", "valid"
	case verify.StatusExpired:
		view.Icon, view.Message, view.StatusClass = "warning", "Certificate Expired", "expired"
	default:
		view.Icon, view.Message, view.StatusClass = "error", "Invalid Certificate", "invalid"
	}

	payload := result.Data
	if payload == nil {
		payload = gin.H{"message": result.Message}
	}
	pretty, err := json.MarshalIndent(payload, "", "  ")
	if err == nil {
		view.Payload = string(pretty)
	}
	return view
}
