// Package authx owns the authenticated session: the process-wide token store
// and the single-flight refresh protocol shared by every authenticated call.
package authx

import (
	"sync"

	"github.com/Trade-Ever/tradeever-go/go/internal/models"
)

// SessionStore holds the one AuthSession for the process. It is constructed
// at app start, written by the login flow and the refresh coordinator, and
// read by every authenticated request when it builds its bearer header.
type SessionStore struct {
	mu      sync.RWMutex
	session models.AuthSession
}

// NewSessionStore creates an empty (signed-out) store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Session returns a copy of the current session.
func (s *SessionStore) Session() models.AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// AccessToken returns the current access token, empty when signed out.
func (s *SessionStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken
}

// RefreshToken returns the current refresh token, empty when signed out.
func (s *SessionStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.RefreshToken
}

// Replace installs a new session wholesale.
func (s *SessionStore) Replace(session models.AuthSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
}

// Clear wipes all stored tokens. Called on sign-out and when a refresh token
// turns out to be permanently dead.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = models.AuthSession{}
}
