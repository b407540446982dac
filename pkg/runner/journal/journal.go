// Package journal runs the write and history commands.
package journal

import (
	"context"
	"strings"
	"time"

	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/model"
	"tableflip.dev/moodlog/pkg/printers"
)

// Write saves a new entry.
type Write struct {
	Service *app.Service
	Printer *printers.PrettyPrint
	Text    string
	Mood    int
	JSON    bool
}

func (w *Write) Do(ctx context.Context) error {
	pp := w.Printer
	if pp == nil {
		pp = printers.New(nil)
	}
	created, err := w.Service.SaveEntry(ctx, strings.TrimSpace(w.Text), w.Mood)
	if err != nil {
		return app.Friendly(err)
	}
	if w.JSON {
		return pp.JSON(created)
	}
	pp.Status(w.Service.Status())
	return nil
}

// History lists entries, newest first.
type History struct {
	Service *app.Service
	Printer *printers.PrettyPrint
	Limit   int
	// Since keeps only entries written within this window. Zero keeps all.
	Since time.Duration
	Now   func() time.Time
	JSON  bool
}

func (h *History) Do(ctx context.Context) error {
	pp := h.Printer
	if pp == nil {
		pp = printers.New(nil)
	}
	if err := h.Service.LoadEntries(ctx); err != nil {
		return app.Friendly(err)
	}
	entries := h.Service.Entries()
	if h.Since > 0 {
		entries = within(entries, h.now().Add(-h.Since))
	}
	if h.Limit > 0 && len(entries) > h.Limit {
		entries = entries[:h.Limit]
	}
	if h.JSON {
		if entries == nil {
			entries = []model.JournalEntry{}
		}
		return pp.JSON(map[string]any{"items": entries})
	}
	if pp.Location == nil {
		if err := h.Service.LoadSettings(ctx); err == nil {
			pp.Location = h.Service.Settings().Location()
		}
	}
	pp.History(entries)
	return nil
}

func (h *History) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// within keeps entries at or after cutoff. entries are newest first.
func within(entries []model.JournalEntry, cutoff time.Time) []model.JournalEntry {
	for i, e := range entries {
		if e.Datetime.Before(cutoff) {
			return entries[:i]
		}
	}
	return entries
}
