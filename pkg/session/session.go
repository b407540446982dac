// Package session holds the bearer token and user of the signed in account.
//
// A Session is written only by the authentication flow; every other flow
// reads it through Reader.
package session

import (
	"errors"
	"strings"
	"sync"

	"tableflip.dev/moodlog/pkg/model"
)

// State is the authentication state of a Session.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Reader is read access to a Session.
type Reader interface {
	State() State
	Authenticated() bool
	Token() string
	User() *model.User
	// Generation changes every time the token changes. Views use it to
	// load once per session rather than on every render.
	Generation() uint64
	// Snapshot returns token, user and generation read together.
	Snapshot() (string, *model.User, uint64)
}

var (
	ErrMissingToken = errors.New("session: token required")
	ErrMissingUser  = errors.New("session: user required")
)

// Session pairs a bearer token with the authenticated user.
type Session struct {
	mu    sync.RWMutex
	state State
	token string
	user  *model.User
	gen   uint64
}

var _ Reader = (*Session)(nil)

// New returns an unauthenticated session.
func New() *Session {
	return &Session{}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Authenticated() bool {
	return s.State() == Authenticated
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed in user, or nil.
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *Session) Snapshot() (string, *model.User, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, copyUser(s.user), s.gen
}

// Begin moves an unauthenticated session to Authenticating. It reports
// false when a login is already in flight or the session is signed in.
func (s *Session) Begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Unauthenticated {
		return false
	}
	s.state = Authenticating
	return true
}

// Abort returns an Authenticating session to Unauthenticated.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Authenticating {
		s.state = Unauthenticated
	}
}

// Establish signs the session in. Token and user must both be present.
func (s *Session) Establish(token string, user *model.User) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}
	if user == nil {
		return ErrMissingUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = copyUser(user)
	s.state = Authenticated
	s.gen++
	return nil
}

// Clear signs the session out. It reports whether a token was dropped.
func (s *Session) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.token != ""
	s.token = ""
	s.user = nil
	s.state = Unauthenticated
	if had {
		s.gen++
	}
	return had
}

func copyUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
