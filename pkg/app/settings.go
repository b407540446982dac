package app

import (
	"context"

	"go.uber.org/zap"

	"tableflip.dev/moodlog/pkg/model"
)

// LoadSettings replaces the cached settings with the server's copy.
func (s *Service) LoadSettings(ctx context.Context) error {
	token, _, gen := s.sess.Snapshot()
	if token == "" {
		return ErrNoSession
	}
	if err := s.loadSettings(ctx, token, gen); err != nil {
		return s.fail("Failed loading settings", gen, err)
	}
	return nil
}

func (s *Service) loadSettings(ctx context.Context, token string, gen uint64) error {
	got, err := s.client.GetSettings(ctx, token)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen) {
		s.log.Debug("dropping stale settings", zap.Uint64("generation", gen))
		return nil
	}
	s.settings = got.WithDefaults()
	return nil
}

// SaveSettings sends next as a whole (never a partial patch) and replaces
// the cached settings with whatever the server returns.
func (s *Service) SaveSettings(ctx context.Context, next model.Settings) (model.Settings, error) {
	token, _, gen := s.sess.Snapshot()
	if token == "" {
		return model.Settings{}, ErrNoSession
	}
	if err := next.Validate(); err != nil {
		s.setStatus("Settings failed: " + Describe(err))
		return model.Settings{}, err
	}

	s.mu.Lock()
	if s.savingSettings {
		s.mu.Unlock()
		return model.Settings{}, ErrBusy
	}
	s.savingSettings = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.savingSettings = false
		s.mu.Unlock()
	}()

	saved, err := s.client.PutSettings(ctx, token, next)
	if err != nil {
		return model.Settings{}, s.fail("Settings failed", gen, err)
	}
	saved = saved.WithDefaults()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current(gen) {
		s.settings = saved
		s.status = "Settings updated."
	}
	return saved, nil
}
