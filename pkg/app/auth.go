package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"tableflip.dev/moodlog/pkg/model"
	"tableflip.dev/moodlog/pkg/session"
	"tableflip.dev/moodlog/pkg/store"
)

// LoggingIn reports whether a login request is in flight.
func (s *Service) LoggingIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggingIn
}

// LoginError is the message of the last failed login, cleared on success.
func (s *Service) LoginError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginErr
}

// Login exchanges username for a token. A blank username is rejected
// without a request.
func (s *Service) Login(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		err := &model.ValidationError{Field: "username", Reason: "must not be empty"}
		s.setLoginError(err)
		return err
	}
	if !s.beginLogin() {
		return ErrBusy
	}
	defer s.endLogin()

	res, err := s.client.Login(ctx, username)
	if err != nil {
		s.sess.Abort()
		s.setLoginError(err)
		s.log.Info("login failed", zap.String("username", username), zap.Error(err))
		return err
	}
	return s.establish(res.Token, &res.User)
}

// LoginWithToken signs in with a token obtained elsewhere, typically the
// Google redirect. The user is read from the token's claims.
func (s *Service) LoginWithToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		err := &model.ValidationError{Field: "token", Reason: "must not be empty"}
		s.setLoginError(err)
		return err
	}
	user, err := session.UserFromToken(token)
	if err != nil {
		s.setLoginError(err)
		return err
	}
	if session.Expired(token, s.now()) {
		err := &model.ValidationError{Field: "token", Reason: "has expired"}
		s.setLoginError(err)
		return err
	}
	if !s.beginLogin() {
		return ErrBusy
	}
	defer s.endLogin()
	return s.establish(token, user)
}

func (s *Service) beginLogin() bool {
	s.mu.Lock()
	if s.loggingIn {
		s.mu.Unlock()
		return false
	}
	// Switching accounts; the old session must not survive, on disk either.
	switching := s.sess.Authenticated()
	if switching {
		s.sess.Clear()
		s.reset()
	}
	ok := s.sess.Begin()
	if ok {
		s.loggingIn = true
		s.loginErr = ""
	}
	s.mu.Unlock()

	if switching && s.p != nil {
		if err := s.p.ClearSession(); err != nil {
			s.log.Warn("clear previous session", zap.Error(err))
		}
	}
	return ok
}

func (s *Service) endLogin() {
	s.mu.Lock()
	s.loggingIn = false
	s.mu.Unlock()
}

func (s *Service) setLoginError(err error) {
	s.mu.Lock()
	s.loginErr = "Login failed: " + Describe(err)
	s.status = s.loginErr
	s.mu.Unlock()
}

func (s *Service) establish(token string, user *model.User) error {
	if err := s.sess.Establish(token, user); err != nil {
		s.sess.Abort()
		s.setLoginError(err)
		return err
	}
	s.mu.Lock()
	s.loginErr = ""
	s.status = "Welcome, " + user.Username + "."
	s.view = DefaultView
	s.mu.Unlock()

	if s.p != nil {
		if err := s.p.SaveSession(store.Saved{Token: token, User: *user}); err != nil {
			s.log.Warn("persist session", zap.Error(err))
		}
	}
	s.log.Info("logged in", zap.String("user_id", user.ID))
	return nil
}

// Restore signs in with the persisted session, if any. Expired tokens are
// discarded. It reports whether a session was restored.
func (s *Service) Restore() (bool, error) {
	if s.p == nil {
		return false, nil
	}
	saved, err := s.p.LoadSession()
	if err != nil || saved == nil {
		return false, err
	}
	if session.Expired(saved.Token, s.now()) {
		s.log.Info("stored session expired")
		return false, s.p.ClearSession()
	}
	if s.sess.Token() == saved.Token {
		return true, nil
	}
	user := saved.User
	if err := s.sess.Establish(saved.Token, &user); err != nil {
		return false, err
	}
	s.mu.Lock()
	s.reset()
	s.mu.Unlock()
	return true, nil
}

// Follow reconciles the in-memory session with the persisted one after it
// changed on disk, for example a logout in another terminal.
func (s *Service) Follow() (bool, error) {
	if s.p == nil {
		return false, nil
	}
	saved, err := s.p.LoadSession()
	if err != nil {
		return false, err
	}
	if saved == nil {
		if s.sess.Clear() {
			s.mu.Lock()
			s.reset()
			s.status = "Logged out elsewhere."
			s.mu.Unlock()
			return true, nil
		}
		return false, nil
	}
	if saved.Token == s.sess.Token() {
		return false, nil
	}
	return s.Restore()
}

// Logout clears the session and every cached view so nothing leaks into
// the next session.
func (s *Service) Logout() error {
	s.sess.Clear()
	s.mu.Lock()
	s.reset()
	s.status = "Logged out."
	s.mu.Unlock()
	if s.p != nil {
		return s.p.ClearSession()
	}
	return nil
}

// expire ends a session the server rejected.
func (s *Service) expire() {
	s.sess.Clear()
	s.mu.Lock()
	s.reset()
	s.status = "Session expired. Please log in again."
	s.mu.Unlock()
	if s.p != nil {
		if err := s.p.ClearSession(); err != nil {
			s.log.Warn("clear expired session", zap.Error(err))
		}
	}
	s.log.Info("session expired")
}

// reset drops cached server state. Callers hold s.mu.
func (s *Service) reset() {
	s.entries = nil
	s.calendar = nil
	s.settings = model.DefaultSettings()
	s.view = DefaultView
	s.loginErr = ""
	s.synced = 0
}
