package domain

import "sync"

// Session holds the single active identity of one caller. It is passed
// explicitly to every operation that needs authorization, so several
// sessions can live side by side.
type Session struct {
	mu   sync.RWMutex
	id   string
	user *User
}

func NewSession(id string) *Session {
	return &Session{id: id}
}

func (s *Session) ID() string { return s.id }

// Identity returns the authenticated user, or nil.
func (s *Session) Identity() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticate replaces the active identity.
func (s *Session) Authenticate(u *User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// Clear drops the active identity.
func (s *Session) Clear() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

func (s *Session) IsAuthenticated() bool { return s.Identity() != nil }

// IsManager derives the role from the identity's variant.
func (s *Session) IsManager() bool {
	u := s.Identity()
	return u != nil && u.IsManager()
}
