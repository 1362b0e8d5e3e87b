// Package session implements an in-memory session store. Sessions live
// only for the lifetime of the process; nothing is persisted, so a
// restart logs every user out.
package session

import (
	"sync"
	"time"

	"github.com/kez1254/budget-app/internal/auth"
)

type entry struct {
	userID    int64
	expiresAt time.Time
}

// Store maps session tokens to user ids with a fixed TTL. Safe for
// concurrent use. The zero value is not usable; construct with New.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

// New creates a session store whose sessions expire after ttl.
func New(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a session for the user and returns its token.
func (s *Store) Create(userID int64) (string, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[token] = entry{userID: userID, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()

	return token, nil
}

// Resolve maps a token to the authenticated user id. Expired sessions
// are removed on access. An active session past the halfway point of
// its lifetime is renewed, so active users stay logged in while idle
// sessions still expire; renewed reports that, so callers can extend
// the client-side cookie to match.
func (s *Store) Resolve(token string) (userID int64, renewed, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok {
		return 0, false, false
	}

	now := s.now()
	if !e.expiresAt.After(now) {
		delete(s.sessions, token)
		return 0, false, false
	}

	if e.expiresAt.Sub(now) < s.ttl/2 {
		e.expiresAt = now.Add(s.ttl)
		s.sessions[token] = e
		renewed = true
	}

	return e.userID, renewed, true
}

// UserID resolves a token to the authenticated user id.
func (s *Store) UserID(token string) (int64, bool) {
	userID, _, ok := s.Resolve(token)
	return userID, ok
}

// Delete ends a session. Deleting an unknown token is a no-op.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// PurgeExpired removes every expired session and returns how many were
// dropped.
func (s *Store) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	purged := 0
	for token, e := range s.sessions {
		if !e.expiresAt.After(now) {
			delete(s.sessions, token)
			purged++
		}
	}
	return purged
}

// Len returns the number of live entries, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
