// Package verify implements the public certificate verification verdict:
// given a certificate number and an optional owner-name claim, it reports
// one of {valid, expired, invalid}.
package verify

import (
	"errors"
	"strings"
	"time"

	"github.com/AntiSecTech/CertVerif/internal/store"
	"go.uber.org/zap"
)

// Status is the tri-state verification verdict.
type Status string

const (
	StatusValid   Status = "valid"
	StatusExpired Status = "expired"
	StatusInvalid Status = "invalid"
)

// Messages used in verdicts. They are part of the public API surface.
const (
	msgNotFound     = "Certificate not found"
	msgNameMismatch = "Name does not match certificate owner"
	msgExpired      = "Certificate has expired"
	msgUnavailable  = "Certificate verification is currently unavailable"
)

// Result is the verdict returned to callers. Data carries the full
// certificate when valid, or the redacted ExpiredData when expired.
type Result struct {
	Found   bool   `json:"found"`
	Valid   bool   `json:"valid"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ExpiredData is the redacted payload for expired certificates. The full
// record is deliberately withheld once a certificate has lapsed.
type ExpiredData struct {
	Message    string `json:"message"`
	CertNumber string `json:"cert_number"`
	ExpireDate string `json:"expire_date"`
}

// CertificateSource is the slice of the certificate store the engine needs.
type CertificateSource interface {
	Get(certNumber string) (*store.Certificate, error)
}

// Engine computes verification verdicts against a certificate source.
type Engine struct {
	certs  CertificateSource
	logger *zap.Logger
	now    func() time.Time
}

// New creates a verification engine.
func New(certs CertificateSource, logger *zap.Logger) *Engine {
	return &Engine{
		certs:  certs,
		logger: logger,
		now:    time.Now,
	}
}

// Verify checks a certificate number against the registry. When both name
// claims are non-empty the owner's first and last name tokens must match
// case-insensitively; a partial claim (only one name) skips the check
// entirely. Storage failures degrade to an invalid verdict with a generic
// message — the detail goes to the log, never to the caller.
func (e *Engine) Verify(certNumber, firstName, lastName string) Result {
	cert, err := e.certs.Get(certNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return invalidResult(msgNotFound)
		}
		e.logger.Error("Certificate lookup failed",
			zap.String("cert_number", certNumber),
			zap.Error(err),
		)
		return invalidResult(msgUnavailable)
	}

	if firstName != "" && lastName != "" && !ownerMatches(cert.Owner, firstName, lastName) {
		return invalidResult(msgNameMismatch)
	}

	expires, err := time.ParseInLocation("2006-01-02", cert.ExpireDate, e.now().Location())
	if err != nil {
		e.logger.Error("Certificate has unparseable expire_date",
			zap.String("cert_number", certNumber),
			zap.String("expire_date", cert.ExpireDate),
			zap.Error(err),
		)
		return invalidResult(msgUnavailable)
	}

	if !expires.After(e.now()) {
		return Result{
			Found:  true,
			Valid:  false,
			Status: StatusExpired,
			Data: ExpiredData{
				Message:    msgExpired,
				CertNumber: cert.CertNumber,
				ExpireDate: cert.ExpireDate,
			},
		}
	}

	return Result{
		Found:  true,
		Valid:  true,
		Status: StatusValid,
		Data:   cert,
	}
}

// ownerMatches compares the claim against the first and last whitespace
// token of the stored owner name, case-insensitively. Both must match.
func ownerMatches(owner, firstName, lastName string) bool {
	tokens := strings.Fields(owner)
	if len(tokens) == 0 {
		return false
	}
	return strings.EqualFold(tokens[0], firstName) &&
		strings.EqualFold(tokens[len(tokens)-1], lastName)
}

func invalidResult(message string) Result {
	return Result{
		Found:   false,
		Valid:   false,
		Status:  StatusInvalid,
		Message: message,
	}
}
