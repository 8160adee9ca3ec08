// Package session holds browser sessions in process memory. The only state a
// session carries is the admin flag granted after a correct PIN entry.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 12 * time.Hour

type state struct {
	admin     bool
	expiresAt time.Time
}

// Manager issues opaque session tokens and tracks the admin flag per token.
// Safe for concurrent use. Sessions are not persisted; a restart logs every
// admin out.
type Manager struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*state
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the manager's time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(ttl time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*state),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue creates a fresh non-admin session and returns its token.
func (m *Manager) Issue() string {
	token := newToken()
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked(now)
	m.sessions[token] = &state{expiresAt: now.Add(m.ttl)}
	return token
}

// Valid reports whether token names a live session.
func (m *Manager) Valid(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	return ok && s.expiresAt.After(m.now())
}

// IsAdmin reports whether token names a live session holding the admin flag.
func (m *Manager) IsAdmin(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	return ok && s.admin && s.expiresAt.After(m.now())
}

// SetAdmin grants the admin flag to a live session and refreshes its expiry.
// Unknown or expired tokens are ignored.
func (m *Manager) SetAdmin(token string) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok || !s.expiresAt.After(now) {
		return
	}
	s.admin = true
	s.expiresAt = now.Add(m.ttl)
}

// Revoke deletes a session.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// pruneLocked drops expired sessions. Caller must hold m.mu.
func (m *Manager) pruneLocked(now time.Time) {
	for token, s := range m.sessions {
		if !s.expiresAt.After(now) {
			delete(m.sessions, token)
		}
	}
}

func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
