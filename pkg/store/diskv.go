package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/moodlog/pkg/model"
)

// Saved is the session persisted between command invocations.
type Saved struct {
	Token   string     `json:"token"`
	User    model.User `json:"user"`
	SavedAt time.Time  `json:"saved_at"`
}

// Persistence keeps the signed in session on disk so separate CLI
// invocations share one login.
type Persistence interface {
	// LoadSession returns the stored session, or nil when there is none.
	LoadSession() (*Saved, error)
	SaveSession(s Saved) error
	ClearSession() error
	BasePath() string
}

const sessionKey = "session.json"

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	// Other processes rewrite the session file; always read from disk.
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 0,
		FilePerm:     0o600,
	}), basePath: basePath}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
}

func (p *persistence) BasePath() string {
	return p.basePath
}

func (p *persistence) LoadSession() (*Saved, error) {
	if !p.d.Has(sessionKey) {
		return nil, nil
	}
	val, err := p.d.Read(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("store: read session: %w", err)
	}
	s := &Saved{}
	if err := json.Unmarshal(val, s); err != nil {
		return nil, fmt.Errorf("store: decode session: %w", err)
	}
	if s.Token == "" {
		return nil, nil
	}
	return s, nil
}

func (p *persistence) SaveSession(s Saved) error {
	if s.Token == "" {
		return errors.New("store: refusing to save a session without a token")
	}
	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now().UTC()
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return p.d.Write(sessionKey, data)
}

func (p *persistence) ClearSession() error {
	if !p.d.Has(sessionKey) {
		return nil
	}
	return p.d.Erase(sessionKey)
}
