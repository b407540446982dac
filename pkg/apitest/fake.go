// Package apitest provides an in-memory fake of the journal API. Tests
// start it with Start; the dev-server command serves its Handler.
package apitest

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tableflip.dev/moodlog/pkg/logging"
	"tableflip.dev/moodlog/pkg/model"
	"tableflip.dev/moodlog/pkg/session"
)

const (
	serverTimeLayout = "2006-01-02T15:04:05.999999"
	dateLayout       = "2006-01-02"
	userKey          = "user"
)

// DemoUsers are the accounts the fake accepts at login.
func DemoUsers() []model.User {
	return []model.User{
		{ID: "user-1", Username: "demo"},
		{ID: "user-2", Username: "admin", IsAdmin: true},
	}
}

type wireEntry struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Mood     int    `json:"mood"`
	Datetime string `json:"entry_datetime"`
}

// Fake is the in-memory journal server.
type Fake struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger
	origin []string

	mu       sync.Mutex
	users    map[string]model.User
	entries  map[string][]wireEntry
	settings map[string]model.Settings
	calls    map[string]int
	failures map[string][]int
	holds    map[string]*hold

	engine *gin.Engine
}

type hold struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// Option configures a Fake.
type Option func(*Fake)

// WithClock sets the time used for entry timestamps and token expiry.
func WithClock(now func() time.Time) Option {
	return func(f *Fake) { f.now = now }
}

// WithTokenTTL sets how long issued tokens stay valid.
func WithTokenTTL(d time.Duration) Option {
	return func(f *Fake) { f.ttl = d }
}

// WithSecret sets the HMAC secret tokens are signed with.
func WithSecret(secret string) Option {
	return func(f *Fake) { f.secret = []byte(secret) }
}

// WithLogger logs each request.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fake) { f.log = logging.OrNop(l) }
}

// WithAllowedOrigins sets the CORS origins; none means any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(f *Fake) { f.origin = origins }
}

// New builds a Fake with the demo users.
func New(opts ...Option) *Fake {
	f := &Fake{
		secret:   []byte("dev-secret-change-me"),
		ttl:      24 * time.Hour,
		now:      time.Now,
		log:      zap.NewNop(),
		users:    make(map[string]model.User),
		entries:  make(map[string][]wireEntry),
		settings: make(map[string]model.Settings),
		calls:    make(map[string]int),
		failures: make(map[string][]int),
		holds:    make(map[string]*hold),
	}
	for _, u := range DemoUsers() {
		f.users[u.Username] = u
	}
	for _, o := range opts {
		o(f)
	}
	f.engine = f.routes()
	return f
}

// Handler serves the fake API.
func (f *Fake) Handler() http.Handler {
	return f.engine
}

func (f *Fake) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), f.requestLog(), f.intercept())

	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(f.origin) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = f.origin
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	pub := r.Group("/api/public")
	pub.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	pub.POST("/login", f.login)

	user := r.Group("/api/user", f.authRequired())
	user.GET("/journal", f.listEntries)
	user.POST("/journal", f.createEntry)
	user.GET("/mood-calendar", f.moodCalendar)
	user.GET("/settings", f.getSettings)
	user.PUT("/settings", f.putSettings)

	admin := r.Group("/api/admin", f.authRequired(), adminRequired())
	admin.GET("/users", f.listUsers)

	r.GET("/auth/google/login", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/app?error=google_sign_in_unavailable")
	})
	return r
}

func routeKey(method, path string) string {
	return method + " " + path
}

// Calls reports how many requests reached method and path.
func (f *Fake) Calls(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[routeKey(method, path)]
}

// ResetCalls zeroes the call counters.
func (f *Fake) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = make(map[string]int)
}

// FailNext makes the next request to method and path answer with status.
// Repeated calls queue further failures.
func (f *Fake) FailNext(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := routeKey(method, path)
	f.failures[k] = append(f.failures[k], status)
}

// Hold parks the next request to method and path until release is called.
// entered is closed once the request has arrived.
func (f *Fake) Hold(method, path string) (entered <-chan struct{}, release func()) {
	h := &hold{entered: make(chan struct{}), release: make(chan struct{})}
	f.mu.Lock()
	f.holds[routeKey(method, path)] = h
	f.mu.Unlock()
	return h.entered, func() { h.once.Do(func() { close(h.release) }) }
}

func (f *Fake) intercept() gin.HandlerFunc {
	return func(c *gin.Context) {
		k := routeKey(c.Request.Method, c.Request.URL.Path)
		f.mu.Lock()
		f.calls[k]++
		var status int
		if queued := f.failures[k]; len(queued) > 0 {
			status, f.failures[k] = queued[0], queued[1:]
		}
		h := f.holds[k]
		delete(f.holds, k)
		f.mu.Unlock()

		if h != nil {
			close(h.entered)
			select {
			case <-h.release:
			case <-c.Request.Context().Done():
			}
		}
		if status != 0 {
			c.AbortWithStatusJSON(status, gin.H{"detail": http.StatusText(status)})
			return
		}
		c.Next()
	}
}

func (f *Fake) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		f.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// IssueToken signs a token for u the way the login endpoint does.
func (f *Fake) IssueToken(u model.User) (string, error) {
	now := f.now()
	claims := session.Claims{
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(f.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.secret)
}

func (f *Fake) parseToken(raw string) (*model.User, error) {
	claims := &session.Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return f.secret, nil
	}, jwt.WithTimeFunc(f.now))
	if err != nil || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return &model.User{ID: claims.Subject, Username: claims.Username, IsAdmin: claims.IsAdmin}, nil
}

func (f *Fake) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}
		u, err := f.parseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

func adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Admin access required"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *model.User {
	return c.MustGet(userKey).(*model.User)
}

func (f *Fake) login(c *gin.Context) {
	username := c.Query("username")
	f.mu.Lock()
	u, ok := f.users[username]
	f.mu.Unlock()
	if !ok {
		allowed := make([]string, 0, len(f.users))
		for _, known := range DemoUsers() {
			allowed = append(allowed, known.Username)
		}
		c.JSON(http.StatusOK, gin.H{"error": "Unknown user", "allowed": allowed})
		return
	}
	token, err := f.IssueToken(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer", "user": u})
}

func (f *Fake) listUsers(c *gin.Context) {
	f.mu.Lock()
	items := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		items = append(items, u)
	}
	f.mu.Unlock()
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (f *Fake) listEntries(c *gin.Context) {
	u := currentUser(c)
	f.mu.Lock()
	items := append([]wireEntry{}, f.entries[u.ID]...)
	f.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (f *Fake) createEntry(c *gin.Context) {
	var body struct {
		Text     string  `json:"text"`
		Mood     int     `json:"mood"`
		Datetime *string `json:"entry_datetime"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if err := (model.NewEntry{Text: body.Text, Mood: body.Mood}).Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	when := f.now().UTC()
	if body.Datetime != nil && *body.Datetime != "" {
		t, err := model.ParseTime(*body.Datetime)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "entry_datetime: " + err.Error()})
			return
		}
		when = t.UTC()
	}
	e := wireEntry{
		ID:       uuid.NewString(),
		Text:     body.Text,
		Mood:     body.Mood,
		Datetime: when.Format(serverTimeLayout),
	}

	u := currentUser(c)
	f.mu.Lock()
	f.entries[u.ID] = append([]wireEntry{e}, f.entries[u.ID]...)
	f.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"item": e})
}

func (f *Fake) moodCalendar(c *gin.Context) {
	u := currentUser(c)
	f.mu.Lock()
	entries := append([]wireEntry{}, f.entries[u.ID]...)
	f.mu.Unlock()

	grouped := make(map[string][]int)
	for _, e := range entries {
		key := e.Datetime[:len(dateLayout)]
		grouped[key] = append(grouped[key], e.Mood)
	}
	days := make([]model.MoodDay, 0, len(grouped))
	for date, moods := range grouped {
		sum := 0
		for _, m := range moods {
			sum += m
		}
		days = append(days, model.MoodDay{Date: date, Average: float64(sum) / float64(len(moods)), Entries: len(moods)})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })
	c.JSON(http.StatusOK, gin.H{"days": days})
}

func defaultSettings() model.Settings {
	return model.Settings{
		DisplayName:  model.DefaultDisplayName,
		ReminderTime: model.DefaultReminderTime,
		Theme:        model.DefaultTheme,
	}
}

func (f *Fake) getSettings(c *gin.Context) {
	u := currentUser(c)
	f.mu.Lock()
	s, ok := f.settings[u.ID]
	if !ok {
		s = defaultSettings()
		f.settings[u.ID] = s
	}
	f.mu.Unlock()
	c.JSON(http.StatusOK, s)
}

func (f *Fake) putSettings(c *gin.Context) {
	var s model.Settings
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	// The stored record is normalized and echoed back as stored.
	s.DisplayName = strings.TrimSpace(s.DisplayName)
	u := currentUser(c)
	f.mu.Lock()
	f.settings[u.ID] = s
	f.mu.Unlock()
	c.JSON(http.StatusOK, s)
}

// Entries returns the stored entries of userID, newest first.
func (f *Fake) Entries(userID string) []model.JournalEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.JournalEntry, 0, len(f.entries[userID]))
	for _, e := range f.entries[userID] {
		t, _ := model.ParseTime(e.Datetime)
		out = append(out, model.JournalEntry{ID: e.ID, Text: e.Text, Mood: e.Mood, Datetime: model.Timestamp{Time: t}})
	}
	return out
}

// Seed stores an entry for userID at when, bypassing the API.
func (f *Fake) Seed(userID, text string, mood int, when time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := wireEntry{ID: uuid.NewString(), Text: text, Mood: mood, Datetime: when.UTC().Format(serverTimeLayout)}
	f.entries[userID] = append([]wireEntry{e}, f.entries[userID]...)
}

// StoredSettings returns the settings held for userID.
func (f *Fake) StoredSettings(userID string) (model.Settings, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.settings[userID]
	return s, ok
}

func (f *Fake) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fmt.Sprintf("apitest.Fake{users: %d}", len(f.users))
}
