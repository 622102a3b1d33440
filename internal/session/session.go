package session

import (
	"errors"
	"sync"
	"time"

	"github.com/chaindocs/tradecore/internal/domain"
)

// ErrClosed is returned when a closed session is used.
var ErrClosed = errors.New("session is closed")

// Session is the explicit, process-wide authentication context: one actor
// identity plus its bearer token, created at application start and torn down
// atomically on logout. It replaces scattered ambient credential lookups;
// components receive the session by reference and never read global state.
type Session struct {
	mu        sync.RWMutex
	actor     domain.Actor
	token     string
	createdAt time.Time
	closed    bool
}

// New opens a session for the given actor.
func New(actor domain.Actor, token string) *Session {
	return &Session{
		actor:     actor,
		token:     token,
		createdAt: time.Now(),
	}
}

// Actor returns the authenticated identity, or an error once closed.
func (s *Session) Actor() (domain.Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.Actor{}, ErrClosed
	}
	return s.actor, nil
}

// Token returns the bearer token for remote calls, or "" once closed.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ""
	}
	return s.token
}

// CreatedAt reports when the session was opened.
func (s *Session) CreatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.createdAt
}

// Active reports whether the session is still usable.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

// Close tears the session down. Credentials are cleared in the same step so
// no component can observe a half-closed session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.actor = domain.Actor{}
	s.token = ""
}
