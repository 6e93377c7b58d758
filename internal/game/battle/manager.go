package battle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no session has the requested ID.
var ErrSessionNotFound = errors.New("battle session not found")

// Manager tracks the active battle sessions of a process.
// All methods are safe for concurrent use; the sessions themselves are not.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Session)}
}

// Start registers s, assigning a fresh ID when it has none.
//
// Precondition: s must not be nil.
// Postcondition: Returns an error if a session with the same ID is already registered.
func (m *Manager) Start(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if _, exists := m.sessions[s.ID]; exists {
		return fmt.Errorf("battle session %s already started", s.ID)
	}
	m.sessions[s.ID] = s
	return nil
}

// Get returns the session with id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// End removes the session with id.
//
// Postcondition: Returns ErrSessionNotFound if id was not registered.
func (m *Manager) End(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("ending %s: %w", id, ErrSessionNotFound)
	}
	delete(m.sessions, id)
	return nil
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
