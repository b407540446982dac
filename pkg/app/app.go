// Package app holds the client-side flows: login/logout, journal entries,
// the mood calendar and settings. Both the CLI and the terminal UI drive
// the same Service so they share one set of rules.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/moodlog/pkg/api"
	"tableflip.dev/moodlog/pkg/logging"
	"tableflip.dev/moodlog/pkg/model"
	"tableflip.dev/moodlog/pkg/session"
	"tableflip.dev/moodlog/pkg/store"
)

// API is the subset of the journal API the flows use. *api.Client
// implements it.
type API interface {
	Login(ctx context.Context, username string) (*api.LoginResult, error)
	ListEntries(ctx context.Context, token string) ([]model.JournalEntry, error)
	CreateEntry(ctx context.Context, token string, e model.NewEntry) (model.JournalEntry, error)
	MoodCalendar(ctx context.Context, token string) ([]model.MoodDay, error)
	GetSettings(ctx context.Context, token string) (model.Settings, error)
	PutSettings(ctx context.Context, token string, s model.Settings) (model.Settings, error)
	GoogleLoginURL() string
}

var _ API = (*api.Client)(nil)

var (
	// ErrBusy is returned when the same action is already in flight. The
	// second request is not sent.
	ErrBusy = errors.New("app: action already in progress")
	// ErrNoSession is returned by data flows when nobody is signed in.
	ErrNoSession = errors.New("app: not signed in")
	// ErrSessionExpired wraps the 401 that ended a session.
	ErrSessionExpired = errors.New("app: session expired")
)

// View is the screen the shell shows.
type View int

const (
	ViewLogin View = iota
	ViewNew
	ViewHistory
	ViewCalendar
	ViewSettings
)

// DefaultView is shown after login and after logout.
const DefaultView = ViewNew

func (v View) String() string {
	switch v {
	case ViewNew:
		return "New Entry"
	case ViewHistory:
		return "Journal History"
	case ViewCalendar:
		return "Mood Calendar"
	case ViewSettings:
		return "Settings"
	default:
		return "Log In"
	}
}

// Views lists the tabs available to a signed in user.
func Views() []View {
	return []View{ViewNew, ViewHistory, ViewCalendar, ViewSettings}
}

// Service owns the session and the locally cached copies of server state.
// It is safe for concurrent use; the terminal UI runs flows on goroutines.
type Service struct {
	client API
	p      store.Persistence
	log    *zap.Logger
	now    func() time.Time

	sess *session.Session

	mu       sync.Mutex
	entries  []model.JournalEntry
	calendar []model.MoodDay
	settings model.Settings
	view     View
	status   string
	loginErr string
	synced   uint64

	loggingIn      bool
	saving         bool
	savingSettings bool
}

// Option configures a Service.
type Option func(*Service)

// WithPersistence keeps the session on disk between runs.
func WithPersistence(p store.Persistence) Option {
	return func(s *Service) { s.p = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = logging.OrNop(l) }
}

// WithClock replaces time.Now, used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a signed out Service.
func New(client API, opts ...Option) *Service {
	s := &Service{
		client:   client,
		log:      zap.NewNop(),
		now:      time.Now,
		sess:     session.New(),
		settings: model.DefaultSettings(),
		view:     DefaultView,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Session gives read access to the current session.
func (s *Service) Session() session.Reader {
	return s.sess
}

// GoogleLoginURL is where a browser should go to sign in with Google.
func (s *Service) GoogleLoginURL() string {
	return s.client.GoogleLoginURL()
}

// CurrentView is the screen to render. Without a session it is always the
// login view.
func (s *Service) CurrentView() View {
	if !s.sess.Authenticated() {
		return ViewLogin
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView switches the active tab. ViewLogin is ignored.
func (s *Service) SetView(v View) {
	if v == ViewLogin {
		return
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

// Status is the one-line message of the last flow that reported one.
func (s *Service) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Entries returns a copy of the cached entries, newest first.
func (s *Service) Entries() []model.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.JournalEntry(nil), s.entries...)
}

// Calendar returns a copy of the cached mood days.
func (s *Service) Calendar() []model.MoodDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.MoodDay(nil), s.calendar...)
}

// Settings returns the cached settings.
func (s *Service) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Saving reports whether an entry save is in flight.
func (s *Service) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// SavingSettings reports whether a settings save is in flight.
func (s *Service) SavingSettings() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savingSettings
}

// Sync loads entries, calendar and settings once per session. Later calls
// with the same token do nothing and report false.
func (s *Service) Sync(ctx context.Context) (bool, error) {
	token, _, gen := s.sess.Snapshot()
	if token == "" {
		return false, ErrNoSession
	}
	s.mu.Lock()
	if s.synced == gen {
		s.mu.Unlock()
		return false, nil
	}
	s.synced = gen
	s.mu.Unlock()

	s.log.Debug("syncing session data", zap.Uint64("generation", gen))

	err := s.loadEntries(ctx, token, gen)
	if err == nil {
		err = s.loadCalendar(ctx, token, gen)
	}
	if err == nil {
		err = s.loadSettings(ctx, token, gen)
	}
	if err != nil {
		return true, s.fail("Failed loading data", gen, err)
	}
	return true, nil
}

// current reports whether gen is still the live session. Results from
// requests issued under an older session are dropped.
func (s *Service) current(gen uint64) bool {
	return s.sess.Generation() == gen
}

func (s *Service) setStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
}

// fail records a flow failure in the status line. A 401 ends the session.
func (s *Service) fail(prefix string, gen uint64, err error) error {
	if api.IsUnauthorized(err) {
		if s.current(gen) {
			s.expire()
		}
		return errors.Join(ErrSessionExpired, err)
	}
	if s.current(gen) {
		s.setStatus(prefix + ": " + Describe(err))
	}
	s.log.Warn(prefix, zap.Error(err))
	return err
}

// Describe turns a flow error into a short human readable message.
func Describe(err error) string {
	var (
		ve *model.ValidationError
		le *api.LoginRejectedError
		he *api.HTTPError
		ne *api.NetworkError
		de *api.DecodeError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionExpired):
		return "session expired, please log in again"
	case errors.Is(err, ErrBusy):
		return "still working on the previous request"
	case errors.Is(err, ErrNoSession):
		return "not logged in"
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &le):
		return le.Error()
	case errors.As(err, &he):
		return he.Error()
	case errors.As(err, &ne):
		if errors.Is(ne.Err, context.Canceled) {
			return "cancelled"
		}
		return "server unreachable at " + ne.URL
	case errors.As(err, &de):
		return "unexpected response from server"
	default:
		return err.Error()
	}
}

// Friendly wraps err so its message reads like Describe while errors.Is
// and errors.As still see the cause.
func Friendly(err error) error {
	if err == nil {
		return nil
	}
	return &friendlyError{err: err}
}

type friendlyError struct{ err error }

func (e *friendlyError) Error() string { return Describe(e.err) }
func (e *friendlyError) Unwrap() error { return e.err }
