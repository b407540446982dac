// Package mcp exposes the journal flows as a Model Context Protocol server.
package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/model"
)

// Service adapts app.Service to the shapes returned by tools and resources.
type Service struct {
	App *app.Service
}

// EntryDTO is a transport-friendly projection of a journal entry.
type EntryDTO struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Mood        int    `json:"mood"`
	CreatedISO  string `json:"created"`
	CreatedUnix int64  `json:"createdUnix"`
}

// SettingsUpdate lists the settings fields to change. Nil fields keep
// their current value.
type SettingsUpdate struct {
	DisplayName  *string
	ReminderTime *string
	Theme        *string
	Timezone     *string
}

// NewService builds a service wrapper around a signed in app.Service.
func NewService(a *app.Service) *Service {
	return &Service{App: a}
}

func (s *Service) ready() error {
	if s.App == nil {
		return errors.New("journal service is not configured")
	}
	if !s.App.Session().Authenticated() {
		return errors.New("not logged in; run `moodlog login` first")
	}
	return nil
}

// WhoAmI returns the signed in user.
func (s *Service) WhoAmI() (*model.User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.App.Session().User(), nil
}

// ListEntries returns up to limit entries, newest first, whose text
// contains query. Zero limit means all.
func (s *Service) ListEntries(ctx context.Context, query string, limit int) ([]EntryDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := s.App.LoadEntries(ctx); err != nil {
		return nil, app.Friendly(err)
	}
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]EntryDTO, 0)
	for _, e := range s.App.Entries() {
		if query != "" && !strings.Contains(strings.ToLower(e.Text), query) {
			continue
		}
		out = append(out, toDTO(e))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// WriteEntry saves a new entry.
func (s *Service) WriteEntry(ctx context.Context, text string, mood int) (EntryDTO, error) {
	if err := s.ready(); err != nil {
		return EntryDTO{}, err
	}
	created, err := s.App.SaveEntry(ctx, strings.TrimSpace(text), mood)
	if err != nil {
		return EntryDTO{}, app.Friendly(err)
	}
	return toDTO(created), nil
}

// Calendar returns the mood days, limited to month (YYYY-MM) when given.
func (s *Service) Calendar(ctx context.Context, month string) ([]model.MoodDay, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			return nil, &model.ValidationError{Field: "month", Reason: "must be YYYY-MM"}
		}
	}
	if err := s.App.LoadCalendar(ctx); err != nil {
		return nil, app.Friendly(err)
	}
	out := make([]model.MoodDay, 0)
	for _, d := range s.App.Calendar() {
		if month == "" || strings.HasPrefix(d.Date, month+"-") {
			out = append(out, d)
		}
	}
	return out, nil
}

// Settings fetches the current settings.
func (s *Service) Settings(ctx context.Context) (model.Settings, error) {
	if err := s.ready(); err != nil {
		return model.Settings{}, err
	}
	if err := s.App.LoadSettings(ctx); err != nil {
		return model.Settings{}, app.Friendly(err)
	}
	return s.App.Settings(), nil
}

// UpdateSettings applies u to the current settings and saves the result
// as a whole.
func (s *Service) UpdateSettings(ctx context.Context, u SettingsUpdate) (model.Settings, error) {
	cur, err := s.Settings(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	if u.DisplayName != nil {
		cur.DisplayName = *u.DisplayName
	}
	if u.ReminderTime != nil {
		cur.ReminderTime = *u.ReminderTime
	}
	if u.Theme != nil {
		cur.Theme = model.Theme(*u.Theme)
	}
	if u.Timezone != nil {
		cur.Timezone = *u.Timezone
	}
	saved, err := s.App.SaveSettings(ctx, cur)
	if err != nil {
		return model.Settings{}, app.Friendly(err)
	}
	return saved, nil
}

func toDTO(e model.JournalEntry) EntryDTO {
	dto := EntryDTO{ID: e.ID, Text: e.Text, Mood: e.Mood}
	if !e.Datetime.IsZero() {
		dto.CreatedISO = e.Datetime.UTC().Format(time.RFC3339)
		dto.CreatedUnix = e.Datetime.Unix()
	}
	return dto
}
