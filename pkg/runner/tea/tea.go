package teaui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"
	"go.uber.org/zap"

	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/logging"
	"tableflip.dev/moodlog/pkg/store"
	"tableflip.dev/moodlog/pkg/voice"
)

// Shell runs the terminal UI until the user quits.
type Shell struct {
	Service     *app.Service
	Persistence store.Persistence
	Recognizer  voice.Recognizer
	Logger      *zap.Logger
}

func (s *Shell) Do(ctx context.Context) error {
	log := logging.OrNop(s.Logger)
	opts := []Option{WithContext(ctx), WithVoice(s.Recognizer)}
	if s.Persistence != nil {
		events, err := store.Watch(ctx, s.Persistence)
		if err != nil {
			log.Warn("session watch unavailable", zap.Error(err))
		} else {
			opts = append(opts, WithSessionEvents(events))
		}
	}

	p := tea.NewProgram(New(s.Service, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
