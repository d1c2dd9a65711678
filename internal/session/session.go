// Package session holds the per-client authentication state and the PIN gate
// that flips it.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Session is one client's authentication state. It starts unauthenticated
// and only a successful Gate.Verify authenticates it. Nothing is persisted,
// so a new Session always requires the PIN again.
type Session struct {
	id string

	mu            sync.RWMutex
	authenticated bool
}

func New() *Session {
	return &Session{id: uuid.NewString()}
}

// ID is a random identifier used as the browser cookie value.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Session) authenticate() {
	s.mu.Lock()
	s.authenticated = true
	s.mu.Unlock()
}
