package info

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/moodlog/pkg/api"
	"tableflip.dev/moodlog/pkg/session"
	"tableflip.dev/moodlog/pkg/store"
)

type Info struct {
	Config      store.Config
	Persistence store.Persistence
	Session     session.Reader
}

func (n *Info) Do(ctx context.Context) error {
	out := color.Output

	if override := os.Getenv(store.ConfigPathEnv); override != "" {
		_, _ = fmt.Fprintln(out, store.ConfigPathEnv, "found on env, using", override)
	} else {
		_, _ = fmt.Fprintln(out, store.ConfigPathEnv, "env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = store.LoadConfig()
		if err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(out, "Config.path:    ", n.Config.BasePath())
	baseURL := n.Config.BaseURL()
	if baseURL == "" {
		baseURL = api.DefaultBaseURL + " (default)"
	}
	_, _ = fmt.Fprintln(out, "Config.base_url:", baseURL)
	_, _ = fmt.Fprintln(out, "Log file:       ", n.Config.Logging().File)

	if n.Persistence == nil {
		return fmt.Errorf("failed to create persistence object")
	}

	saved, err := n.Persistence.LoadSession()
	if err != nil {
		return err
	}
	switch {
	case n.Session != nil && n.Session.Authenticated():
		_, _ = fmt.Fprintln(out, "Session:         signed in as", n.Session.User().String())
	case saved != nil:
		_, _ = fmt.Fprintln(out, "Session:         stored for", saved.User.Username, "(expired)")
	default:
		_, _ = fmt.Fprintln(out, "Session:         not signed in")
	}
	return nil
}
