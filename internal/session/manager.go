// Package session implements the in-memory session store backing the admin
// area. Sessions are keyed by an opaque 256-bit random token, live for a
// fixed (non-sliding) TTL, and disappear on process restart. Expired entries
// are removed lazily on read and in bulk by Sweep.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/AntiSecTech/CertVerif/internal/auth"
)

// DefaultTTL is the fixed session lifetime measured from creation.
const DefaultTTL = time.Hour

// tokenBytes is the entropy of a session token (32 bytes = 256 bits).
const tokenBytes = 32

// Session is the server-side state behind a session cookie. Username and
// Role are copied from the administrator at login time and are not
// re-validated against the store until the next login.
type Session struct {
	Token     string
	Username  string
	Role      auth.Role
	ExpiresAt time.Time
}

// Manager owns the token → session map. All methods are safe for
// concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewManager creates a session manager with the given TTL. A zero or
// negative TTL falls back to DefaultTTL.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create mints a new session for an authenticated administrator and returns
// it. The token is suitable for use as a cookie value.
func (m *Manager) Create(username string, role auth.Role) (Session, error) {
	token, err := newToken()
	if err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess := Session{
		Token:     token,
		Username:  username,
		Role:      role,
		ExpiresAt: m.now().Add(m.ttl),
	}
	m.sessions[token] = sess
	return sess, nil
}

// Validate returns the session for token iff it exists and has not expired.
// Expired entries are deleted on read.
func (m *Manager) Validate(token string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok {
		return Session{}, false
	}
	if !sess.ExpiresAt.After(m.now()) {
		delete(m.sessions, token)
		return Session{}, false
	}
	return sess, true
}

// Destroy removes the session for token. Removing an unknown token is a
// no-op.
func (m *Manager) Destroy(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// Sweep removes all expired sessions and returns how many were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	dropped := 0
	for token, sess := range m.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(m.sessions, token)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of stored sessions, expired or not.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
