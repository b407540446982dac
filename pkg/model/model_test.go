package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewEntryValidate(t *testing.T) {
	tests := map[string]struct {
		entry NewEntry
		field string
	}{
		"ok":          {entry: NewEntry{Text: "Great day", Mood: 8}},
		"blank":       {entry: NewEntry{Text: "  \n\t", Mood: 5}, field: "text"},
		"too long":    {entry: NewEntry{Text: strings.Repeat("a", MaxTextLength+1), Mood: 5}, field: "text"},
		"mood low":    {entry: NewEntry{Text: "hi", Mood: 0}, field: "mood"},
		"mood high":   {entry: NewEntry{Text: "hi", Mood: 11}, field: "mood"},
		"mood bounds": {entry: NewEntry{Text: "hi", Mood: MaxMood}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.entry.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, ve.Field)
			}
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	good := Settings{DisplayName: "Friend", ReminderTime: "07:30", Theme: ThemeCitrus, Timezone: "Europe/Berlin"}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []Settings{
		{DisplayName: "", ReminderTime: "07:30", Theme: ThemeWarm, Timezone: "UTC"},
		{DisplayName: "a", ReminderTime: "7:30", Theme: ThemeWarm, Timezone: "UTC"},
		{DisplayName: "a", ReminderTime: "25:00", Theme: ThemeWarm, Timezone: "UTC"},
		{DisplayName: "a", ReminderTime: "07:30", Theme: "neon", Timezone: "UTC"},
		{DisplayName: "a", ReminderTime: "07:30", Theme: ThemeWarm, Timezone: "Mars/Olympus"},
	}
	for _, s := range bad {
		if err := s.Validate(); !IsValidation(err) {
			t.Fatalf("expected validation error for %+v, got %v", s, err)
		}
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Theme != ThemeWarm {
		t.Fatalf("expected warm theme, got %s", s.Theme)
	}
	if s.ReminderTime != DefaultReminderTime {
		t.Fatalf("unexpected reminder %s", s.ReminderTime)
	}
	if s.Timezone == "" {
		t.Fatalf("expected a host timezone")
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestThemeNextCycles(t *testing.T) {
	if got := ThemeWarm.Next().Next().Next(); got != ThemeWarm {
		t.Fatalf("expected cycle back to warm, got %s", got)
	}
	if got := Theme("bogus").Next(); got != ThemeWarm {
		t.Fatalf("unknown theme should reset to warm, got %s", got)
	}
}

func TestTimestampParsesNaiveServerTime(t *testing.T) {
	var e JournalEntry
	body := `{"id":"1","text":"x","mood":3,"entry_datetime":"2025-11-02T08:15:30.123456"}`
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Date(2025, time.November, 2, 8, 15, 30, 123456000, time.UTC)
	if !e.Datetime.Equal(want) {
		t.Fatalf("expected %v, got %v", want, e.Datetime.Time)
	}

	if err := json.Unmarshal([]byte(`{"entry_datetime":"2025-11-02T08:15:30+02:00"}`), &e); err != nil {
		t.Fatalf("unmarshal offset: %v", err)
	}
	if got := e.Datetime.UTC().Hour(); got != 6 {
		t.Fatalf("expected 06 UTC, got %d", got)
	}
}
