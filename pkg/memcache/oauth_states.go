// pkg/memcache/oauth_states.go
package mem

import (
	"sync"
	"time"
)

// StateStore holds short-lived, single-use OAuth state nonces issued with a
// gateway re-authorization link.
type StateStore interface {
	Set(state string, provider string, ttl time.Duration)

	// Consume returns the provider for state if not expired and removes the
	// state. Returns "" if missing/expired.
	Consume(state string) string

	Peek(state string) (string, bool)
}

type entry struct {
	provider  string
	expiresAt time.Time
}

type OAuthStates struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewOAuthStates() *OAuthStates {
	return &OAuthStates{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *OAuthStates) Set(state string, provider string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	// drop anything already expired so abandoned links don't accumulate
	for k, e := range s.data {
		if now.After(e.expiresAt) {
			delete(s.data, k)
		}
	}
	s.data[state] = entry{
		provider:  provider,
		expiresAt: now.Add(ttl),
	}
}

func (s *OAuthStates) Consume(state string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[state]
	if !ok {
		return ""
	}
	delete(s.data, state) // single-use
	if s.now().After(e.expiresAt) {
		return ""
	}
	return e.provider
}

func (s *OAuthStates) Peek(state string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[state]
	if !ok || s.now().After(e.expiresAt) {
		return "", false
	}
	return e.provider, true
}
