package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"tableflip.dev/moodlog/pkg/model"
)

// LoadEntries replaces the cached entries with the server's list.
func (s *Service) LoadEntries(ctx context.Context) error {
	token, _, gen := s.sess.Snapshot()
	if token == "" {
		return ErrNoSession
	}
	if err := s.loadEntries(ctx, token, gen); err != nil {
		return s.fail("Failed loading entries", gen, err)
	}
	return nil
}

func (s *Service) loadEntries(ctx context.Context, token string, gen uint64) error {
	items, err := s.client.ListEntries(ctx, token)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen) {
		s.log.Debug("dropping stale entries", zap.Uint64("generation", gen))
		return nil
	}
	s.entries = items
	return nil
}

// SaveEntry creates an entry. Text must not be blank and mood must be in
// 1..10; invalid input is rejected before any request. While a save is in
// flight further calls return ErrBusy. On success the entry is prepended,
// the mood calendar is refreshed once and the history view is selected.
func (s *Service) SaveEntry(ctx context.Context, text string, mood int) (model.JournalEntry, error) {
	token, _, gen := s.sess.Snapshot()
	if token == "" {
		return model.JournalEntry{}, ErrNoSession
	}
	req := model.NewEntry{Text: text, Mood: mood}
	if err := req.Validate(); err != nil {
		s.setStatus("Save failed: " + Describe(err))
		return model.JournalEntry{}, err
	}

	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return model.JournalEntry{}, ErrBusy
	}
	s.saving = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	created, err := s.client.CreateEntry(ctx, token, req)
	if err != nil {
		return model.JournalEntry{}, s.fail("Save failed", gen, err)
	}

	s.mu.Lock()
	if !s.current(gen) {
		s.mu.Unlock()
		return created, nil
	}
	s.entries = append([]model.JournalEntry{created}, s.entries...)
	s.status = "Entry saved. Nice work."
	s.mu.Unlock()
	s.log.Info("entry saved", zap.String("entry_id", created.ID), zap.Int("mood", created.Mood))

	if err := s.loadCalendar(ctx, token, gen); err != nil {
		// The entry exists; the calendar stays stale until the next load.
		if ferr := s.fail("Entry saved, but the mood calendar is out of date", gen, err); errors.Is(ferr, ErrSessionExpired) {
			return created, ferr
		}
	}

	s.mu.Lock()
	if s.current(gen) {
		s.view = ViewHistory
	}
	s.mu.Unlock()
	return created, nil
}
