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

// CertificateHandler handles certificate management in the admin area.
type CertificateHandler struct {
	certs  *store.CertificateStore
	logger *zap.Logger
}

// NewCertificateHandler creates a new certificate handler
func NewCertificateHandler(certs *store.CertificateStore, logger *zap.Logger) *CertificateHandler {
	return &CertificateHandler{
		certs:  certs,
		logger: logger,
	}
}

// ListPage renders the certificate list. The collection is embedded as JSON
// for the client-side table script.
func (h *CertificateHandler) ListPage(c *gin.Context) {
	certs, err := h.certs.List()
	if err != nil {
		h.logger.Error("Failed to list certificates", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load certificates")
		return
	}

	data, err := json.Marshal(certs)
	if err != nil {
		h.logger.Error("Failed to encode certificates", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load certificates")
		return
	}

	sess, _ := middleware.SessionFrom(c)
	// json.Marshal HTML-escapes <, > and &, so the document is safe to
	// inline into the page as-is.
	c.HTML(http.StatusOK, "certificates_list.html", gin.H{
		"CertificatesJSON": template.JS(data),
		"IsAdmin":          sess.Role.AtLeast(auth.RoleAdmin),
	})
}

// NewForm renders the empty certificate form.
func (h *CertificateHandler) NewForm(c *gin.Context) {
	c.HTML(http.StatusOK, "certificate_form.html", gin.H{
		"CertificateJSON": template.JS("{}"),
	})
}

// EditForm renders the form pre-filled with an existing certificate.
func (h *CertificateHandler) EditForm(c *gin.Context) {
	certNumber := c.Param("cert_number")

	cert, err := h.certs.Get(certNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.String(http.StatusNotFound, "certificate not found")
			return
		}
		h.logger.Error("Failed to load certificate", zap.String("cert_number", certNumber), zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load certificate")
		return
	}

	data, err := json.Marshal(cert)
	if err != nil {
		h.logger.Error("Failed to encode certificate", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load certificate")
		return
	}

	c.HTML(http.StatusOK, "certificate_form.html", gin.H{
		"CertificateJSON": template.JS(data),
	})
}

// Create handles the new-certificate form post. Number, year, and sequence
// are assigned by the store, never taken from the form.
func (h *CertificateHandler) Create(c *gin.Context) {
	input := certificateInputFromForm(c)
	if input.Owner == "" || input.ExpireDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner and expire date are required"})
		return
	}

	cert, err := h.certs.Create(input)
	if err != nil {
		h.logger.Error("Failed to create certificate", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create certificate"})
		return
	}

	h.logger.Info("Certificate created",
		zap.String("cert_number", cert.CertNumber),
		zap.String("owner", cert.Owner),
	)

	c.Redirect(http.StatusFound, "/admin/certificates")
}

// Update handles the edit form PUT, preserving the immutable fields.
func (h *CertificateHandler) Update(c *gin.Context) {
	certNumber := c.Param("cert_number")

	cert, err := h.certs.Update(certNumber, certificateInputFromForm(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "certificate not found"})
			return
		}
		h.logger.Error("Failed to update certificate", zap.String("cert_number", certNumber), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update certificate"})
		return
	}

	h.logger.Info("Certificate updated", zap.String("cert_number", cert.CertNumber))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete removes a certificate. The route is admin-gated.
func (h *CertificateHandler) Delete(c *gin.Context) {
	certNumber := c.Param("cert_number")

	if err := h.certs.Delete(certNumber); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "certificate not found"})
			return
		}
		h.logger.Error("Failed to delete certificate", zap.String("cert_number", certNumber), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete certificate"})
		return
	}

	h.logger.Info("Certificate deleted", zap.String("cert_number", certNumber))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// certificateInputFromForm reads the bracketed form field names the admin
// forms submit, e.g. cert_type[type] and address[city].
func certificateInputFromForm(c *gin.Context) store.CertificateInput {
	phone := c.PostForm("contact[phone]")
	return store.CertificateInput{
		Type:        c.PostForm("cert_type[type]"),
		Title:       c.PostForm("cert_type[title]"),
		Description: c.PostForm("cert_type[description]"),
		Owner:       c.PostForm("owner"),
		Birthdate:   c.PostForm("birthdate"),
		Address: store.Address{
			Street: c.PostForm("address[street]"),
			No:     c.PostForm("address[no]"),
			City:   c.PostForm("address[city]"),
			Zip:    c.PostForm("address[zip]"),
		},
		Contact: store.Contact{
			Phone: &phone,
			Email: c.PostForm("contact[email]"),
		},
		ExpireDate: c.PostForm("expire_date"),
	}
}
