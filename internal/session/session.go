// Package session carries the acting identity through core operations.
// Operations that mutate state receive a Session explicitly; there is no
// ambient current-user state anywhere in the system.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/agrovex/campoflow/internal/domain/models"
)

// Session identifies the authenticated actor performing an operation.
type Session struct {
	UserID   string
	Username string
	Role     models.Role
}

// Can reports whether the session's role grants the requested capability.
func (s Session) Can(c models.Capability) bool {
	return s.Role.Can(c)
}

// System returns the session used for operations performed by the service
// itself, such as the admin bootstrap.
func System() Session {
	return Session{UserID: "system", Username: "system", Role: models.RoleAdmin}
}

// Manager keeps active sessions keyed by opaque bearer tokens.
type Manager struct {
	mu      sync.RWMutex
	byToken map[string]Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{byToken: make(map[string]Session)}
}

// Create registers the session and returns its bearer token.
func (m *Manager) Create(s Session) string {
	token := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byToken[token] = s

	return token
}

// Get resolves a token to its session.
func (m *Manager) Get(token string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byToken[token]
	return s, ok
}

// Revoke removes the session bound to the token, if any.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byToken, token)
}
