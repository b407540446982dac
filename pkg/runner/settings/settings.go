// Package settings runs the settings get and set commands.
package settings

import (
	"context"

	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/model"
	"tableflip.dev/moodlog/pkg/printers"
)

// Get prints the server's settings.
type Get struct {
	Service *app.Service
	Printer *printers.PrettyPrint
	JSON    bool
}

func (g *Get) Do(ctx context.Context) error {
	pp := g.Printer
	if pp == nil {
		pp = printers.New(nil)
	}
	if err := g.Service.LoadSettings(ctx); err != nil {
		return app.Friendly(err)
	}
	if g.JSON {
		return pp.JSON(g.Service.Settings())
	}
	pp.Settings(g.Service.Settings())
	return nil
}

// Set changes the fields that are non-nil and saves the whole record.
type Set struct {
	Service      *app.Service
	Printer      *printers.PrettyPrint
	DisplayName  *string
	ReminderTime *string
	Theme        *string
	Timezone     *string
	JSON         bool
}

func (s *Set) Do(ctx context.Context) error {
	pp := s.Printer
	if pp == nil {
		pp = printers.New(nil)
	}
	if err := s.Service.LoadSettings(ctx); err != nil {
		return app.Friendly(err)
	}
	next := s.Apply(s.Service.Settings())
	saved, err := s.Service.SaveSettings(ctx, next)
	if err != nil {
		return app.Friendly(err)
	}
	if s.JSON {
		return pp.JSON(saved)
	}
	pp.Status(s.Service.Status())
	pp.Settings(saved)
	return nil
}

// Apply overlays the requested changes on cur.
func (s *Set) Apply(cur model.Settings) model.Settings {
	if s.DisplayName != nil {
		cur.DisplayName = *s.DisplayName
	}
	if s.ReminderTime != nil {
		cur.ReminderTime = *s.ReminderTime
	}
	if s.Theme != nil {
		cur.Theme = model.Theme(*s.Theme)
	}
	if s.Timezone != nil {
		cur.Timezone = *s.Timezone
	}
	return cur
}
