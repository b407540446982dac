package store

import (
	"os"
	"path/filepath"
	"testing"

	"tableflip.dev/moodlog/pkg/model"
)

func TestSessionRoundTrip(t *testing.T) {
	base := filepath.Join(t.TempDir(), "state")
	p, err := Load(NewConfig(base, ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if s, err := p.LoadSession(); err != nil || s != nil {
		t.Fatalf("expected no session, got %+v, %v", s, err)
	}

	want := Saved{Token: "tok", User: model.User{ID: "user-2", Username: "admin", IsAdmin: true}}
	if err := p.SaveSession(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A second Persistence on the same directory sees the session, as a
	// later CLI invocation would.
	p2, err := Load(NewConfig(base, ""))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := p2.LoadSession()
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if got == nil || got.Token != "tok" || got.User != want.User {
		t.Fatalf("unexpected session %+v", got)
	}
	if got.SavedAt.IsZero() {
		t.Fatalf("expected saved_at to be stamped")
	}

	if err := p2.ClearSession(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, sessionKey)); !os.IsNotExist(err) {
		t.Fatalf("expected session file removed, got %v", err)
	}
	if err := p2.ClearSession(); err != nil {
		t.Fatalf("clearing twice should be fine: %v", err)
	}
}

func TestSaveSessionRequiresToken(t *testing.T) {
	p, err := Load(NewConfig(t.TempDir(), ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := p.SaveSession(Saved{}); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestLoadConfigReadsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("MOODLOG_BASE_URL", "http://journal.test")
	t.Setenv("MOODLOG_PATH", filepath.Join(dir, "state"))
	t.Setenv("MOODLOG_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BaseURL() != "http://journal.test" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL())
	}
	if cfg.BasePath() != filepath.Join(dir, "state") {
		t.Fatalf("unexpected path %q", cfg.BasePath())
	}
	lo := cfg.Logging()
	if lo.Level != "debug" {
		t.Fatalf("unexpected log level %q", lo.Level)
	}
	if lo.File != filepath.Join(dir, "state", logFileName) {
		t.Fatalf("unexpected log file %q", lo.File)
	}
}
