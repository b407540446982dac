package teaui

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"tableflip.dev/moodlog/pkg/api"
	"tableflip.dev/moodlog/pkg/apitest"
	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/model"
	"tableflip.dev/moodlog/pkg/voice"
)

func press(key string) tea.KeyPressMsg {
	switch key {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	}
	r := []rune(key)[0]
	return tea.KeyPressMsg{Code: r, Text: key}
}

// screen is the rendered view without styling.
func screen(m Model) string {
	return ansi.Strip(m.View())
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// collect runs cmds concurrently and returns the messages produced within
// a second. Commands that block longer (listeners, cursor ticks) are left
// behind.
func collect(cmds []tea.Cmd) []tea.Msg {
	var (
		mu   sync.Mutex
		msgs []tea.Msg
		wg   sync.WaitGroup
	)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, bc := range batch {
					run(bc)
				}
				return
			}
			mu.Lock()
			msgs = append(msgs, msg)
			mu.Unlock()
		}()
	}
	for _, c := range cmds {
		run(c)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
	}
	mu.Lock()
	defer mu.Unlock()
	return append([]tea.Msg(nil), msgs...)
}

// drain feeds the model's own messages back into Update until no flow is
// left running.
func drain(m Model, cmd tea.Cmd) (Model, []tea.Msg) {
	var seen []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		msgs := collect(queue)
		queue = nil
		for _, msg := range msgs {
			seen = append(seen, msg)
			switch msg.(type) {
			case loginDoneMsg, syncedMsg, savedMsg, settingsSavedMsg, reloadedMsg:
				var next tea.Cmd
				m, next = update(m, msg)
				queue = append(queue, next)
			}
		}
	}
	return m, seen
}

func quits(msgs []tea.Msg) bool {
	for _, msg := range msgs {
		if _, ok := msg.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}

func newShell(t *testing.T, opts ...Option) (Model, *app.Service, *apitest.Server) {
	t.Helper()
	srv := apitest.Start(t)
	svc := app.New(api.New(srv.URL))
	return New(svc, opts...), svc, srv
}

func signedIn(t *testing.T, opts ...Option) (Model, *app.Service, *apitest.Server) {
	t.Helper()
	m, svc, srv := newShell(t, opts...)
	m.login.SetValue("demo")
	m, cmd := update(m, press("enter"))
	m, _ = drain(m, cmd)
	if !svc.Session().Authenticated() {
		t.Fatalf("login through the shell failed: %s", m.status)
	}
	srv.ResetCalls()
	return m, svc, srv
}

func TestLoginViewUntilAuthenticated(t *testing.T) {
	m, svc, srv := newShell(t)
	if got := screen(m); !strings.Contains(got, "Username") {
		t.Fatalf("expected login form, got:\n%s", got)
	}
	// Tabs are not reachable before login.
	m, _ = update(m, press("2"))
	if svc.CurrentView() != app.ViewLogin {
		t.Fatalf("expected login view, got %v", svc.CurrentView())
	}

	m.login.SetValue("demo")
	m, cmd := update(m, press("enter"))
	m, _ = drain(m, cmd)

	if svc.CurrentView() != app.ViewNew {
		t.Fatalf("expected new entry tab after login, got %v", svc.CurrentView())
	}
	for _, path := range []string{api.PathJournal, api.PathCalendar, api.PathSettings} {
		if n := srv.Calls(http.MethodGet, path); n != 1 {
			t.Fatalf("expected one GET %s after login, got %d", path, n)
		}
	}
	if got := screen(m); !strings.Contains(got, "1 New Entry") || !strings.Contains(got, "4 Settings") {
		t.Fatalf("expected tabs, got:\n%s", got)
	}
}

func TestLoginFailureShowsError(t *testing.T) {
	m, svc, _ := newShell(t)
	m.login.SetValue("nobody")
	m, cmd := update(m, press("enter"))
	m, _ = drain(m, cmd)

	if svc.Session().Authenticated() {
		t.Fatalf("expected unknown user to be rejected")
	}
	if !strings.HasPrefix(m.status, "Login failed") {
		t.Fatalf("unexpected status %q", m.status)
	}
	if got := screen(m); !strings.Contains(got, "Username") {
		t.Fatalf("expected login form to stay, got:\n%s", got)
	}
}

func TestMoodKeysClamp(t *testing.T) {
	m, _, _ := signedIn(t)
	if m.mood != defaultMood {
		t.Fatalf("expected default mood %d, got %d", defaultMood, m.mood)
	}
	for i := 0; i < 5; i++ {
		m, _ = update(m, press("+"))
	}
	if m.mood != model.MaxMood {
		t.Fatalf("expected mood clamped to %d, got %d", model.MaxMood, m.mood)
	}
	for i := 0; i < 15; i++ {
		m, _ = update(m, press("-"))
	}
	if m.mood != model.MinMood {
		t.Fatalf("expected mood clamped to %d, got %d", model.MinMood, m.mood)
	}
}

func TestSaveSwitchesToHistory(t *testing.T) {
	m, svc, srv := signedIn(t)
	m.text.SetValue("a quiet walk")
	m, cmd := update(m, press("s"))
	if !m.saving || m.status != "Saving..." {
		t.Fatalf("expected saving state, got saving=%v status=%q", m.saving, m.status)
	}
	m, _ = drain(m, cmd)

	if svc.CurrentView() != app.ViewHistory {
		t.Fatalf("expected history tab, got %v", svc.CurrentView())
	}
	if m.text.Value() != "" {
		t.Fatalf("expected entry text cleared, got %q", m.text.Value())
	}
	if n := srv.Calls(http.MethodGet, api.PathCalendar); n != 1 {
		t.Fatalf("expected one calendar refresh, got %d", n)
	}
	if items := m.history.Items(); len(items) != 1 {
		t.Fatalf("expected one history item, got %d", len(items))
	}
	if got := screen(m); !strings.Contains(got, "a quiet walk") {
		t.Fatalf("expected entry in history, got:\n%s", got)
	}
}

func TestSaveIgnoredWhileSaving(t *testing.T) {
	m, _, srv := signedIn(t)
	entered, release := srv.Hold(http.MethodPost, api.PathJournal)
	defer release()

	m.text.SetValue("twice")
	m, cmd := update(m, press("s"))

	done := make(chan *Model, 1)
	go func(m Model) {
		next, _ := drain(m, cmd)
		done <- &next
	}(m)

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("save never reached the server")
	}
	m, _ = update(m, press("s"))
	if !strings.Contains(screen(m), "Saving...") {
		t.Fatalf("expected busy indicator while saving")
	}
	release()
	<-done

	if n := srv.Calls(http.MethodPost, api.PathJournal); n != 1 {
		t.Fatalf("expected one create request, got %d", n)
	}
}

func TestBlankEntryIsNotSent(t *testing.T) {
	m, svc, srv := signedIn(t)
	m.text.SetValue("   ")
	m, cmd := update(m, press("s"))
	m, _ = drain(m, cmd)

	if n := srv.Calls(http.MethodPost, api.PathJournal); n != 0 {
		t.Fatalf("expected no request, got %d", n)
	}
	if svc.CurrentView() != app.ViewNew {
		t.Fatalf("expected to stay on new tab, got %v", svc.CurrentView())
	}
	if m.saving {
		t.Fatalf("expected saving cleared")
	}
}

func TestUnauthorizedReturnsToLogin(t *testing.T) {
	m, svc, srv := signedIn(t)
	m, _ = update(m, press("2"))
	srv.FailNext(http.MethodGet, api.PathJournal, http.StatusUnauthorized)

	m, cmd := update(m, press("r"))
	m, _ = drain(m, cmd)

	if svc.Session().Authenticated() {
		t.Fatalf("expected session expired")
	}
	if svc.CurrentView() != app.ViewLogin {
		t.Fatalf("expected login view, got %v", svc.CurrentView())
	}
	if !strings.Contains(m.status, "Session expired") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestTabsCycle(t *testing.T) {
	m, svc, _ := signedIn(t)
	want := []app.View{app.ViewHistory, app.ViewCalendar, app.ViewSettings, app.ViewNew}
	for _, v := range want {
		m, _ = update(m, press("tab"))
		if svc.CurrentView() != v {
			t.Fatalf("expected %v, got %v", v, svc.CurrentView())
		}
	}
}

func TestCommandMode(t *testing.T) {
	m, svc, _ := signedIn(t)

	m, _ = update(m, press("q"))
	if m.status != "Use :q or :exit to quit" {
		t.Fatalf("unexpected status %q", m.status)
	}

	m, _ = update(m, press(":"))
	if m.mode != modeCommand {
		t.Fatalf("expected command mode")
	}
	m.command.SetValue("logout")
	m, _ = update(m, press("enter"))
	if svc.Session().Authenticated() || svc.CurrentView() != app.ViewLogin {
		t.Fatalf("expected :logout to sign out")
	}
	if got := screen(m); !strings.Contains(got, "Username") {
		t.Fatalf("expected login form after logout, got:\n%s", got)
	}
}

func TestCommandQuit(t *testing.T) {
	for _, c := range []string{"q", "quit", "exit"} {
		t.Run(c, func(t *testing.T) {
			m, _, _ := signedIn(t)
			m, _ = update(m, press(":"))
			m.command.SetValue(c)
			_, cmd := update(m, press("enter"))
			if cmd == nil {
				t.Fatalf("expected quit command")
			}
			if !quits(collect([]tea.Cmd{cmd})) {
				t.Fatalf("expected :%s to quit", c)
			}
		})
	}
}

func TestSettingsSave(t *testing.T) {
	m, svc, srv := signedIn(t)
	m, _ = update(m, press("4"))
	if svc.CurrentView() != app.ViewSettings {
		t.Fatalf("expected settings tab")
	}
	m.form[fieldName].SetValue("Sam")
	m, _ = update(m, press("t"))
	m.form[fieldTimezone].SetValue("UTC")
	m, cmd := update(m, press("s"))
	m, _ = drain(m, cmd)

	stored, ok := srv.StoredSettings("user-1")
	if !ok {
		t.Fatalf("expected settings stored")
	}
	if stored.DisplayName != "Sam" || stored.Theme != model.ThemeCitrus || stored.ReminderTime != model.DefaultReminderTime {
		t.Fatalf("unexpected stored settings %+v", stored)
	}
	if svc.Settings().DisplayName != "Sam" {
		t.Fatalf("expected local settings replaced, got %+v", svc.Settings())
	}
	if m.theme.Name != model.ThemeCitrus {
		t.Fatalf("expected citrus theme applied, got %v", m.theme.Name)
	}
}

func TestSettingsInvalidNotSent(t *testing.T) {
	m, _, srv := signedIn(t)
	m, _ = update(m, press("4"))
	m.form[fieldReminder].SetValue("25:99")
	if got := screen(m); !strings.Contains(got, "reminder_time") {
		t.Fatalf("expected inline validation error, got:\n%s", got)
	}
	m, cmd := update(m, press("s"))
	m, _ = drain(m, cmd)
	if n := srv.Calls(http.MethodPut, api.PathSettings); n != 0 {
		t.Fatalf("expected no request, got %d", n)
	}
	if !strings.Contains(m.status, "reminder_time") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestCalendarMonthNavigation(t *testing.T) {
	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	m, _, _ := signedIn(t, WithClock(func() time.Time { return now }))
	m, _ = update(m, press("3"))
	if got := screen(m); !strings.Contains(got, "March 2025") {
		t.Fatalf("expected current month, got:\n%s", got)
	}
	m, _ = update(m, press("h"))
	if got := screen(m); !strings.Contains(got, "February 2025") {
		t.Fatalf("expected previous month, got:\n%s", got)
	}
	m, _ = update(m, press("t"))
	if !m.month.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected today's month, got %v", m.month)
	}
}

type fakeRecognizer struct {
	mu      sync.Mutex
	handler voice.Handler
}

func (f *fakeRecognizer) Available() bool { return true }

func (f *fakeRecognizer) Start(_ context.Context, h voice.Handler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
	return nil
}

func (f *fakeRecognizer) Stop() error {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h.OnError(voice.CodeAborted)
		h.OnEnd()
	}
	return nil
}

func (f *fakeRecognizer) say(segments ...voice.Segment) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	h.OnResult(segments)
}

func TestVoiceAppendsToEntry(t *testing.T) {
	rec := &fakeRecognizer{}
	m, _, _ := signedIn(t, WithVoice(rec))
	if !strings.Contains(screen(m), "v dictate") {
		t.Fatalf("expected dictate hint")
	}
	m.text.SetValue("Hello")
	m, _ = update(m, press("v"))
	if m.status != "Listening..." {
		t.Fatalf("unexpected status %q", m.status)
	}

	rec.say(voice.Segment{Transcript: "world"})
	rec.say(voice.Segment{Transcript: "world today", Final: true})
	m, _ = update(m, voiceMsg{})
	if got := m.text.Value(); got != "Hello world today" {
		t.Fatalf("unexpected text %q", got)
	}

	m, _ = update(m, press("v"))
	if m.capture.Listening() {
		t.Fatalf("expected capture stopped")
	}
}

func TestVoiceDroppedOnLogout(t *testing.T) {
	rec := &fakeRecognizer{}
	m, svc, _ := signedIn(t, WithVoice(rec))
	m.text.SetValue("private thoughts")
	m, _ = update(m, press("v"))
	rec.say(voice.Segment{Transcript: "about alice"})

	m, _ = update(m, press(":"))
	m.command.SetValue("logout")
	m, _ = update(m, press("enter"))
	if svc.Session().Authenticated() {
		t.Fatalf("expected :logout to sign out")
	}
	// The signal left behind by the recording.
	m, _ = update(m, voiceMsg{})
	if got := m.text.Value(); got != "" {
		t.Fatalf("dictated text survived logout: %q", got)
	}

	m.login.SetValue("demo")
	m, cmd := update(m, press("enter"))
	m, _ = drain(m, cmd)
	if got := m.text.Value(); got != "" {
		t.Fatalf("next session starts with %q", got)
	}
}

func TestVoiceNotRestoredAfterSave(t *testing.T) {
	rec := &fakeRecognizer{}
	m, svc, srv := signedIn(t, WithVoice(rec))
	m.text.SetValue("Hello")
	m, _ = update(m, press("v"))
	rec.say(voice.Segment{Transcript: "world", Final: true})

	m, cmd := update(m, press("s"))
	if m.capture.Listening() {
		t.Fatalf("expected saving to stop dictation")
	}
	m, _ = drain(m, cmd)
	if svc.CurrentView() != app.ViewHistory {
		t.Fatalf("expected history tab, got %v", svc.CurrentView())
	}
	entries := svc.Entries()
	if len(entries) != 1 || entries[0].Text != "Hello world" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	// A late result and the end of the recording arrive after the save.
	rec.say(voice.Segment{Transcript: "world again"})
	m, _ = update(m, voiceMsg{})
	if got := m.text.Value(); got != "" {
		t.Fatalf("saved text came back: %q", got)
	}
	m, _ = update(m, press("1"))
	m, cmd = update(m, press("s"))
	m, _ = drain(m, cmd)
	if n := srv.Calls(http.MethodPost, api.PathJournal); n != 1 {
		t.Fatalf("expected one create request, got %d", n)
	}
}

func TestVoiceHiddenWhenUnavailable(t *testing.T) {
	m, _, _ := signedIn(t, WithVoice(voice.Unavailable{}))
	if strings.Contains(screen(m), "dictate") {
		t.Fatalf("expected no dictate hint when voice is unavailable")
	}
	m, _ = update(m, press("v"))
	if m.status == "Listening..." {
		t.Fatalf("voice key should do nothing")
	}
}
