package teaui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/model"
	"tableflip.dev/moodlog/pkg/printers"
	"tableflip.dev/moodlog/pkg/runner/tea/internal/theme"
	"tableflip.dev/moodlog/pkg/store"
	"tableflip.dev/moodlog/pkg/voice"
)

type mode int

const (
	modeNormal mode = iota
	modeInsert
	modeCommand
	modeHelp
)

type field int

const (
	fieldName field = iota
	fieldReminder
	fieldTheme
	fieldTimezone
	fieldCount
)

const (
	defaultMood = 7
	timeLayout  = "Mon Jan 2 2006 15:04"
)

// entry item for the history list
type entryItem struct {
	e   model.JournalEntry
	loc *time.Location
}

func (it entryItem) Title() string {
	text := printers.Sanitize(it.e.Text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + " …"
	}
	return fmt.Sprintf("%2d/10  %s", it.e.Mood, text)
}
func (it entryItem) Description() string { return it.e.Datetime.In(it.loc).Format(timeLayout) }
func (it entryItem) FilterValue() string { return it.e.Text }

// messages
type loginDoneMsg struct{ err error }
type syncedMsg struct{ err error }
type savedMsg struct{ err error }
type settingsSavedMsg struct{ err error }
type reloadedMsg struct{ err error }
type voiceMsg struct{}
type sessionMsg struct{ ok bool }

// Option configures the Model.
type Option func(*Model)

// WithContext sets the context flows run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithVoice enables dictation on the new entry tab when rec is available.
func WithVoice(rec voice.Recognizer) Option {
	return func(m *Model) {
		if rec != nil && rec.Available() {
			m.capture = voice.NewCapture(rec)
		}
	}
}

// WithSessionEvents follows logins and logouts made in other terminals.
func WithSessionEvents(events <-chan store.Event) Option {
	return func(m *Model) { m.events = events }
}

// WithClock replaces time.Now for the calendar's current month.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// Model contains UI state
type Model struct {
	svc  *app.Service
	ctx  context.Context
	now  func() time.Time
	mode mode

	login   textinput.Model
	text    textinput.Model
	command textinput.Model
	mood    int

	history list.Model
	month   time.Time

	form      [fieldCount]textinput.Model
	formTheme model.Theme
	field     field

	capture *voice.Capture
	events  <-chan store.Event

	status         string
	loggingIn      bool
	syncing        bool
	saving         bool
	savingSettings bool

	termWidth  int
	termHeight int
	theme      theme.Theme
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	ti.Styles.Cursor.Color = lipgloss.Color("218")
	return ti
}

// New creates a new UI model backed by the Service.
func New(svc *app.Service, opts ...Option) Model {
	d := list.NewDefaultDelegate()
	d.SetSpacing(0)
	hl := list.New([]list.Item{}, d, 80, 20)
	hl.Title = app.ViewHistory.String()
	hl.SetShowHelp(false)
	hl.SetShowStatusBar(false)
	hl.SetFilteringEnabled(false)

	m := Model{
		svc:     svc,
		ctx:     context.Background(),
		now:     time.Now,
		mode:    modeNormal,
		login:   newInput("username (demo or admin)", 64),
		text:    newInput("How was your day?", model.MaxTextLength),
		command: newInput("command", 64),
		mood:    defaultMood,
		history: hl,
	}
	m.form[fieldName] = newInput("display name", 64)
	m.form[fieldReminder] = newInput("HH:MM", 5)
	m.form[fieldTimezone] = newInput("Area/City", 64)
	for _, o := range opts {
		o(&m)
	}
	m.month = monthOf(m.now())
	m.login.Focus()
	m.refreshViews()
	return m
}

// Init starts syncing a restored session and the background listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.svc.Session().Authenticated() {
		cmds = append(cmds, m.syncCmd())
	}
	if m.capture != nil {
		cmds = append(cmds, waitForVoice(m.capture))
	}
	if m.events != nil {
		cmds = append(cmds, waitForSession(m.events))
	}
	return tea.Batch(cmds...)
}

func (m *Model) syncCmd() tea.Cmd {
	m.syncing = true
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		_, err := svc.Sync(ctx)
		return syncedMsg{err}
	}
}

func (m *Model) loginCmd(username string) tea.Cmd {
	m.loggingIn = true
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		return loginDoneMsg{svc.Login(ctx, username)}
	}
}

func (m *Model) saveCmd() tea.Cmd {
	if m.saving {
		return nil
	}
	if m.capture != nil {
		if text, ok := m.capture.Take(); ok {
			m.text.SetValue(text)
		}
		_ = m.capture.Reset()
	}
	m.saving = true
	m.status = "Saving..."
	svc, ctx := m.svc, m.ctx
	text, mood := m.text.Value(), m.mood
	return func() tea.Msg {
		_, err := svc.SaveEntry(ctx, text, mood)
		return savedMsg{err}
	}
}

func (m *Model) saveSettingsCmd() tea.Cmd {
	if m.savingSettings {
		return nil
	}
	m.savingSettings = true
	m.status = "Saving settings..."
	next := m.draft()
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		_, err := svc.SaveSettings(ctx, next)
		return settingsSavedMsg{err}
	}
}

func (m *Model) reloadCmd() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	view := svc.CurrentView()
	return func() tea.Msg {
		var err error
		switch view {
		case app.ViewHistory:
			err = svc.LoadEntries(ctx)
		case app.ViewCalendar:
			err = svc.LoadCalendar(ctx)
		case app.ViewSettings:
			err = svc.LoadSettings(ctx)
		default:
			if err = svc.LoadEntries(ctx); err == nil {
				err = svc.LoadCalendar(ctx)
			}
		}
		return reloadedMsg{err}
	}
}

func waitForVoice(c *voice.Capture) tea.Cmd {
	return func() tea.Msg {
		<-c.Updates()
		return voiceMsg{}
	}
}

func waitForSession(events <-chan store.Event) tea.Cmd {
	return func() tea.Msg {
		_, ok := <-events
		return sessionMsg{ok: ok}
	}
}

// Update handles messages and keybindings
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.applySizes()
	case loginDoneMsg:
		m.loggingIn = false
		m.status = m.svc.Status()
		if msg.err == nil {
			m.login.Reset()
			m.login.Blur()
			m.mode = modeNormal
			cmds = append(cmds, m.syncCmd())
		}
	case syncedMsg:
		m.syncing = false
		m.afterFlow(msg.err)
		m.loadForm()
	case reloadedMsg:
		m.afterFlow(msg.err)
		if m.svc.CurrentView() == app.ViewSettings {
			m.loadForm()
		}
	case savedMsg:
		m.saving = false
		if errors.Is(msg.err, app.ErrBusy) {
			break
		}
		if msg.err == nil {
			m.text.Reset()
			m.text.Blur()
			m.mode = modeNormal
		}
		m.afterFlow(msg.err)
	case settingsSavedMsg:
		m.savingSettings = false
		m.afterFlow(msg.err)
		if msg.err == nil {
			m.loadForm()
		}
	case voiceMsg:
		if m.capture == nil {
			break
		}
		if text, ok := m.capture.Take(); ok {
			m.text.SetValue(text)
			m.text.CursorEnd()
		}
		if vm := m.capture.Message(); vm != "" {
			m.status = vm
		}
		cmds = append(cmds, waitForVoice(m.capture))
	case sessionMsg:
		if !msg.ok {
			m.events = nil
			break
		}
		changed, err := m.svc.Follow()
		if err != nil {
			m.status = "Session check failed: " + app.Describe(err)
		} else if changed {
			m.afterFlow(nil)
			if m.svc.Session().Authenticated() {
				cmds = append(cmds, m.syncCmd())
			}
		}
		cmds = append(cmds, waitForSession(m.events))
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.svc.CurrentView() == app.ViewLogin {
			cmds = append(cmds, m.updateLogin(msg))
			break
		}
		switch m.mode {
		case modeHelp:
			if key := msg.String(); key == "q" || key == "esc" || key == "?" {
				m.mode = modeNormal
			}
		case modeCommand:
			cmds = append(cmds, m.updateCommand(msg))
		case modeInsert:
			cmds = append(cmds, m.updateInsert(msg))
		case modeNormal:
			cmds = append(cmds, m.updateNormal(msg))
		}
	}

	return m, tea.Batch(cmds...)
}

// afterFlow picks up the status of a finished flow. A flow may have ended
// the session, in which case the login view takes over.
func (m *Model) afterFlow(err error) {
	if s := m.svc.Status(); s != "" {
		m.status = s
	} else if err != nil {
		m.status = app.Describe(err)
	}
	if !m.svc.Session().Authenticated() {
		m.mode = modeNormal
		m.text.Reset()
		m.text.Blur()
		if m.capture != nil {
			_ = m.capture.Reset()
		}
		m.login.Focus()
	}
	m.refreshViews()
}

func (m *Model) updateLogin(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		if m.loggingIn {
			return nil
		}
		return m.loginCmd(m.login.Value())
	case "ctrl+g":
		m.status = "Open " + m.svc.GoogleLoginURL() + " then run: moodlog login --token <token>"
		return nil
	case "esc":
		return tea.Quit
	}
	if !m.login.Focused() {
		m.login.Focus()
	}
	var cmd tea.Cmd
	m.login, cmd = m.login.Update(msg)
	return cmd
}

func (m *Model) updateCommand(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		input := strings.TrimSpace(m.command.Value())
		m.mode = modeNormal
		m.command.Reset()
		m.command.Blur()
		switch input {
		case "q", "quit", "exit":
			return tea.Quit
		case "logout":
			if err := m.svc.Logout(); err != nil {
				m.status = "Logout failed: " + app.Describe(err)
			}
			m.afterFlow(nil)
		case "refresh", "r":
			return m.reloadCmd()
		case "help":
			m.mode = modeHelp
		case "":
			// nothing
		default:
			m.status = fmt.Sprintf("Unknown command: %s", input)
		}
		return nil
	case "esc":
		m.mode = modeNormal
		m.command.Reset()
		m.command.Blur()
		m.status = "Command cancelled"
		return nil
	}
	var cmd tea.Cmd
	m.command, cmd = m.command.Update(msg)
	return cmd
}

func (m *Model) updateInsert(msg tea.KeyPressMsg) tea.Cmd {
	view := m.svc.CurrentView()
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.text.Blur()
		m.form[m.field].Blur()
		return nil
	case "enter":
		if view == app.ViewNew {
			return m.saveCmd()
		}
		m.mode = modeNormal
		m.form[m.field].Blur()
		return nil
	}
	var cmd tea.Cmd
	if view == app.ViewNew {
		m.text, cmd = m.text.Update(msg)
	} else if view == app.ViewSettings {
		m.form[m.field], cmd = m.form[m.field].Update(msg)
	}
	return cmd
}

func (m *Model) updateNormal(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case ":":
		m.mode = modeCommand
		m.command.Reset()
		m.status = "COMMAND: q to quit, logout, refresh"
		cmd := m.command.Focus()
		return tea.Batch(cmd, textinput.Blink)
	case "?":
		m.mode = modeHelp
		return nil
	case "q":
		m.status = "Use :q or :exit to quit"
		return nil
	case "tab":
		m.switchTab(1)
		return nil
	case "shift+tab":
		m.switchTab(-1)
		return nil
	case "1", "2", "3", "4":
		m.svc.SetView(app.Views()[int(key[0]-'1')])
		m.refreshViews()
		return nil
	case "r":
		return m.reloadCmd()
	}

	switch m.svc.CurrentView() {
	case app.ViewNew:
		return m.updateNew(key)
	case app.ViewHistory:
		switch key {
		case "j", "down":
			m.history.CursorDown()
		case "k", "up":
			m.history.CursorUp()
		case "g":
			m.history.Select(0)
		case "G":
			if n := len(m.history.Items()); n > 0 {
				m.history.Select(n - 1)
			}
		}
	case app.ViewCalendar:
		switch key {
		case "h", "left":
			m.month = m.month.AddDate(0, -1, 0)
		case "l", "right":
			m.month = m.month.AddDate(0, 1, 0)
		case "t":
			m.month = monthOf(m.now())
		}
	case app.ViewSettings:
		return m.updateSettings(key)
	}
	return nil
}

func (m *Model) updateNew(key string) tea.Cmd {
	switch key {
	case "i", "enter":
		m.mode = modeInsert
		m.text.CursorEnd()
		return tea.Batch(m.text.Focus(), textinput.Blink)
	case "+", "=", "k", "up":
		if m.mood < model.MaxMood {
			m.mood++
		}
	case "-", "j", "down":
		if m.mood > model.MinMood {
			m.mood--
		}
	case "s":
		return m.saveCmd()
	case "v":
		return m.toggleVoice()
	}
	return nil
}

func (m *Model) toggleVoice() tea.Cmd {
	if m.capture == nil {
		return nil
	}
	if m.capture.Listening() {
		_ = m.capture.Stop()
		m.status = "Stopped listening."
		return nil
	}
	if err := m.capture.Start(m.ctx, m.text.Value()); err != nil {
		m.status = m.capture.Message()
		return nil
	}
	m.status = "Listening..."
	return nil
}

func (m *Model) updateSettings(key string) tea.Cmd {
	switch key {
	case "j", "down":
		m.field = (m.field + 1) % fieldCount
	case "k", "up":
		m.field = (m.field + fieldCount - 1) % fieldCount
	case "t":
		m.formTheme = m.formTheme.Next()
	case "i", "enter":
		if m.field == fieldTheme {
			m.formTheme = m.formTheme.Next()
			return nil
		}
		m.mode = modeInsert
		m.form[m.field].CursorEnd()
		return tea.Batch(m.form[m.field].Focus(), textinput.Blink)
	case "s":
		return m.saveSettingsCmd()
	case "u":
		m.loadForm()
		m.status = "Changes discarded."
	}
	return nil
}

func (m *Model) switchTab(delta int) {
	views := app.Views()
	cur := 0
	for i, v := range views {
		if v == m.svc.CurrentView() {
			cur = i
		}
	}
	next := (cur + delta + len(views)) % len(views)
	m.svc.SetView(views[next])
	m.refreshViews()
}

// refreshViews copies service state into the widgets.
func (m *Model) refreshViews() {
	settings := m.svc.Settings()
	m.theme = theme.For(settings.Theme)
	loc := settings.Location()

	entries := m.svc.Entries()
	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, entryItem{e: e, loc: loc})
	}
	m.history.SetItems(items)
}

// loadForm resets the settings form to the service's settings.
func (m *Model) loadForm() {
	s := m.svc.Settings()
	m.form[fieldName].SetValue(s.DisplayName)
	m.form[fieldReminder].SetValue(s.ReminderTime)
	m.form[fieldTimezone].SetValue(s.Timezone)
	m.formTheme = s.Theme
}

func (m *Model) draft() model.Settings {
	return model.Settings{
		DisplayName:  strings.TrimSpace(m.form[fieldName].Value()),
		ReminderTime: strings.TrimSpace(m.form[fieldReminder].Value()),
		Theme:        m.formTheme,
		Timezone:     strings.TrimSpace(m.form[fieldTimezone].Value()),
	}
}

// applySizes recalculates widget sizes based on current terminal size.
func (m *Model) applySizes() {
	if m.termWidth == 0 || m.termHeight == 0 {
		return
	}
	width := m.termWidth - 4
	if width < 20 {
		width = 20
	}
	// Leave room for header, tabs and status lines.
	height := m.termHeight - 7
	if height < 5 {
		height = 5
	}
	m.history.SetSize(width, height)
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
