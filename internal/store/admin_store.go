package store

import (
	"fmt"
	"sync"

	"github.com/AntiSecTech/CertVerif/internal/auth"
)

// ProtectedUsername is the main administrator account that may never be
// deleted.
const ProtectedUsername = "admin"

// AdminStore is the file-backed administrator collection.
type AdminStore struct {
	mu   sync.Mutex
	path string
}

// NewAdminStore creates a store over the given admin.json path.
func NewAdminStore(path string) *AdminStore {
	return &AdminStore{path: path}
}

// List returns all administrator records with their password hashes
// stripped.
func (s *AdminStore) List() ([]Administrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	admins := make([]Administrator, 0, len(doc.Administrators))
	for _, admin := range doc.Administrators {
		admins = append(admins, admin.Sanitized())
	}
	return admins, nil
}

// Get returns a sanitized administrator record, or ErrNotFound.
func (s *AdminStore) Get(username string) (*Administrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, admin := range doc.Administrators {
		if admin.Username == username {
			sanitized := admin.Sanitized()
			return &sanitized, nil
		}
	}
	return nil, ErrNotFound
}

// Authenticate checks a username/password pair and returns the matching
// record on success. Unknown usernames and wrong passwords both surface as
// ErrInvalidCredentials.
func (s *AdminStore) Authenticate(username, password string) (*Administrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, admin := range doc.Administrators {
		if admin.Username != username {
			continue
		}
		if err := auth.VerifyPassword(password, admin.PasswordHash); err != nil {
			return nil, ErrInvalidCredentials
		}
		match := admin
		return &match, nil
	}
	return nil, ErrInvalidCredentials
}

// Create adds a new administrator with a freshly hashed password. Usernames
// are unique and case-sensitive. Role policy (who may create admins) is the
// caller's responsibility.
func (s *AdminStore) Create(username, password string, role auth.Role) (*Administrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, admin := range doc.Administrators {
		if admin.Username == username {
			return nil, ErrDuplicateUsername
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := Administrator{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	doc.Administrators = append(doc.Administrators, admin)
	if err := saveDocument(s.path, doc); err != nil {
		return nil, err
	}

	sanitized := admin.Sanitized()
	return &sanitized, nil
}

// Update changes an administrator's role and, when password is non-empty,
// rehashes the credential. The username itself is immutable.
func (s *AdminStore) Update(username, password string, role auth.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	for i := range doc.Administrators {
		if doc.Administrators[i].Username != username {
			continue
		}

		if password != "" {
			hash, err := auth.HashPassword(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			doc.Administrators[i].PasswordHash = hash
		}
		doc.Administrators[i].Role = role

		return saveDocument(s.path, doc)
	}
	return ErrNotFound
}

// Delete removes an administrator. The main "admin" account is protected,
// and deleting a missing account reports ErrNotFound.
func (s *AdminStore) Delete(username string) error {
	if username == ProtectedUsername {
		return ErrProtectedAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	kept := doc.Administrators[:0:0]
	for _, admin := range doc.Administrators {
		if admin.Username != username {
			kept = append(kept, admin)
		}
	}
	if len(kept) == len(doc.Administrators) {
		return ErrNotFound
	}

	doc.Administrators = kept
	return saveDocument(s.path, doc)
}

func (s *AdminStore) load() (*adminDocument, error) {
	doc := &adminDocument{}
	if err := loadDocument(s.path, doc); err != nil {
		return nil, err
	}
	if doc.Administrators == nil {
		doc.Administrators = []Administrator{}
	}
	return doc, nil
}
