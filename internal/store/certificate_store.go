package store

import (
	"fmt"
	"sync"
	"time"
)

// expireDateLayout is the calendar date format used for birthdate and
// expire_date fields.
const expireDateLayout = "2006-01-02"

// FormatCertNumber renders a certificate number from its parts:
// CV + last two digits of the issue year + zero-padded per-year sequence
// number + issue date as YYMMDD. Uniqueness is the caller's concern.
func FormatCertNumber(year, seq int, issued time.Time) string {
	return fmt.Sprintf("CV%02d-%03d-%s", year%100, seq, issued.Format("060102"))
}

// CertificateInput carries the caller-editable certificate fields. The
// certificate number and the year/number sequence pair are never taken from
// input.
type CertificateInput struct {
	Type        string
	Title       string
	Description string
	Owner       string
	Birthdate   string
	Address     Address
	Contact     Contact
	ExpireDate  string
}

// DashboardStats summarizes the registry for the admin dashboard.
type DashboardStats struct {
	Total        int `json:"total"`
	Valid        int `json:"valid"`
	ExpiringSoon int `json:"expiring_soon"`
	Expired      int `json:"expired"`
	CertTypes    int `json:"cert_types"`
}

// CertificateStore is the file-backed certificate registry. Every mutation
// runs load → mutate → save under one mutex, which is what keeps the
// per-year sequence numbers unique under concurrent creates.
type CertificateStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewCertificateStore creates a store over the given certificates.json path.
func NewCertificateStore(path string) *CertificateStore {
	return &CertificateStore{
		path: path,
		now:  time.Now,
	}
}

// List returns all certificates in document order.
func (s *CertificateStore) List() ([]Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Certificates, nil
}

// Get returns the certificate with the given number, or ErrNotFound.
func (s *CertificateStore) Get(certNumber string) (*Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Certificates {
		if doc.Certificates[i].CertNumber == certNumber {
			cert := doc.Certificates[i]
			return &cert, nil
		}
	}
	return nil, ErrNotFound
}

// Create appends a new certificate. The issue year is the current year, the
// sequence number is one past the highest number ever issued for that year
// (deleted certificates do not free their numbers), and the certificate
// number is derived from both plus today's date.
func (s *CertificateStore) Create(input CertificateInput) (*Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	issued := s.now()
	year := issued.Year()
	seq := nextSequence(doc.Certificates, year)

	cert := Certificate{
		CertNumber: FormatCertNumber(year, seq, issued),
		CertType: CertType{
			Type:        input.Type,
			Year:        year,
			Number:      seq,
			Title:       input.Title,
			Description: input.Description,
		},
		Owner:      input.Owner,
		Birthdate:  input.Birthdate,
		Address:    input.Address,
		Contact:    normalizeContact(input.Contact),
		ExpireDate: input.ExpireDate,
		IsValid:    true,
	}

	doc.Certificates = append(doc.Certificates, cert)
	if err := saveDocument(s.path, doc); err != nil {
		return nil, err
	}
	return &cert, nil
}

// Update replaces the editable fields of an existing certificate. The
// certificate number, the issue year/number pair, and the administrative
// is_valid flag are copied from the stored record, not from input.
func (s *CertificateStore) Update(certNumber string, input CertificateInput) (*Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range doc.Certificates {
		existing := doc.Certificates[i]
		if existing.CertNumber != certNumber {
			continue
		}

		updated := Certificate{
			CertNumber: existing.CertNumber,
			CertType: CertType{
				Type:        input.Type,
				Year:        existing.CertType.Year,
				Number:      existing.CertType.Number,
				Title:       input.Title,
				Description: input.Description,
			},
			Owner:      input.Owner,
			Birthdate:  input.Birthdate,
			Address:    input.Address,
			Contact:    normalizeContact(input.Contact),
			ExpireDate: input.ExpireDate,
			IsValid:    existing.IsValid,
		}

		doc.Certificates[i] = updated
		if err := saveDocument(s.path, doc); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, ErrNotFound
}

// Delete removes a certificate. A delete that filters nothing out reports
// ErrNotFound instead of silently succeeding.
func (s *CertificateStore) Delete(certNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	kept := doc.Certificates[:0:0]
	for _, cert := range doc.Certificates {
		if cert.CertNumber != certNumber {
			kept = append(kept, cert)
		}
	}
	if len(kept) == len(doc.Certificates) {
		return ErrNotFound
	}

	doc.Certificates = kept
	return saveDocument(s.path, doc)
}

// Stats computes the dashboard aggregates. A certificate whose expire_date
// does not parse counts as expired.
func (s *CertificateStore) Stats() (*DashboardStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	now := s.now()
	soon := now.Add(30 * 24 * time.Hour)
	stats := &DashboardStats{Total: len(doc.Certificates)}
	types := make(map[string]struct{})

	for _, cert := range doc.Certificates {
		types[cert.CertType.Type] = struct{}{}

		expires, err := time.ParseInLocation(expireDateLayout, cert.ExpireDate, now.Location())
		if err != nil || !expires.After(now) {
			stats.Expired++
			continue
		}
		stats.Valid++
		if !expires.After(soon) {
			stats.ExpiringSoon++
		}
	}

	stats.CertTypes = len(types)
	return stats, nil
}

func (s *CertificateStore) load() (*certificateDocument, error) {
	doc := &certificateDocument{}
	if err := loadDocument(s.path, doc); err != nil {
		return nil, err
	}
	if doc.Certificates == nil {
		doc.Certificates = []Certificate{}
	}
	return doc, nil
}

// nextSequence returns one past the highest sequence number issued for the
// given year. Using the maximum rather than the count keeps numbers unique
// even after deletions.
func nextSequence(certs []Certificate, year int) int {
	max := 0
	for _, cert := range certs {
		if cert.CertType.Year == year && cert.CertType.Number > max {
			max = cert.CertType.Number
		}
	}
	return max + 1
}

// normalizeContact maps a blank phone to null, matching the stored format.
func normalizeContact(c Contact) Contact {
	if c.Phone != nil && *c.Phone == "" {
		c.Phone = nil
	}
	return c
}
