package api

import (
	"context"
	"net/http"
	"net/url"

	"tableflip.dev/moodlog/pkg/model"
)

const (
	PathLogin       = "/api/public/login"
	PathJournal     = "/api/user/journal"
	PathCalendar    = "/api/user/mood-calendar"
	PathSettings    = "/api/user/settings"
	PathGoogleLogin = "/auth/google/login"
)

// LoginResult is a successful login exchange.
type LoginResult struct {
	Token string
	User  model.User
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *model.User `json:"user"`
	Error       string      `json:"error"`
	Allowed     []string    `json:"allowed"`
}

// Login exchanges a username for a token and user.
func (c *Client) Login(ctx context.Context, username string) (*LoginResult, error) {
	var resp loginResponse
	path := PathLogin + "?username=" + url.QueryEscape(username)
	if err := c.Do(ctx, http.MethodPost, path, "", nil, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &LoginRejectedError{Message: resp.Error, Allowed: resp.Allowed}
	}
	if resp.User == nil {
		return nil, &LoginRejectedError{Message: "login response carried no user"}
	}
	return &LoginResult{Token: resp.AccessToken, User: *resp.User}, nil
}

// ListEntries returns every entry of the token's user, newest first.
func (c *Client) ListEntries(ctx context.Context, token string) ([]model.JournalEntry, error) {
	var resp struct {
		Items []model.JournalEntry `json:"items"`
	}
	if err := c.Do(ctx, http.MethodGet, PathJournal, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// CreateEntry stores a new entry and returns it as created by the server.
func (c *Client) CreateEntry(ctx context.Context, token string, e model.NewEntry) (model.JournalEntry, error) {
	var resp struct {
		Item model.JournalEntry `json:"item"`
	}
	if err := c.Do(ctx, http.MethodPost, PathJournal, token, e, &resp); err != nil {
		return model.JournalEntry{}, err
	}
	return resp.Item, nil
}

// MoodCalendar returns the per-day mood aggregates.
func (c *Client) MoodCalendar(ctx context.Context, token string) ([]model.MoodDay, error) {
	var resp struct {
		Days []model.MoodDay `json:"days"`
	}
	if err := c.Do(ctx, http.MethodGet, PathCalendar, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Days, nil
}

// GetSettings fetches the user's settings.
func (c *Client) GetSettings(ctx context.Context, token string) (model.Settings, error) {
	var s model.Settings
	if err := c.Do(ctx, http.MethodGet, PathSettings, token, nil, &s); err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

// PutSettings replaces the user's settings wholesale and returns the
// server's canonical copy.
func (c *Client) PutSettings(ctx context.Context, token string, s model.Settings) (model.Settings, error) {
	var out model.Settings
	if err := c.Do(ctx, http.MethodPut, PathSettings, token, s, &out); err != nil {
		return model.Settings{}, err
	}
	return out, nil
}

// GoogleLoginURL is the page that starts the browser based Google sign in.
// It is a navigation target, not a JSON endpoint.
func (c *Client) GoogleLoginURL() string {
	return c.baseURL + PathGoogleLogin
}
