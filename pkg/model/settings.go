package model

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Theme is the display palette selected in settings.
type Theme string

const (
	ThemeWarm   Theme = "warm"
	ThemeCitrus Theme = "citrus"
	ThemeSunset Theme = "sunset"
)

// Themes lists the accepted theme values in display order.
func Themes() []Theme {
	return []Theme{ThemeWarm, ThemeCitrus, ThemeSunset}
}

// Valid reports whether t is one of Themes.
func (t Theme) Valid() bool {
	for _, known := range Themes() {
		if t == known {
			return true
		}
	}
	return false
}

// Next cycles through Themes.
func (t Theme) Next() Theme {
	all := Themes()
	for i, known := range all {
		if t == known {
			return all[(i+1)%len(all)]
		}
	}
	return ThemeWarm
}

const (
	DefaultDisplayName  = "Friend"
	DefaultReminderTime = "20:00"
	DefaultTheme        = ThemeWarm

	reminderLayout = "15:04"
)

// Settings is the per-user preference record. It is always saved whole.
type Settings struct {
	DisplayName  string `json:"display_name"`
	ReminderTime string `json:"reminder_time"`
	Theme        Theme  `json:"theme"`
	Timezone     string `json:"timezone"`
}

// DefaultSettings returns the values shown before the server answers.
func DefaultSettings() Settings {
	return Settings{
		DisplayName:  DefaultDisplayName,
		ReminderTime: DefaultReminderTime,
		Theme:        DefaultTheme,
		Timezone:     HostTimezone(),
	}
}

// WithDefaults fills fields the server left empty.
func (s Settings) WithDefaults() Settings {
	if s.Theme == "" {
		s.Theme = DefaultTheme
	}
	if s.ReminderTime == "" {
		s.ReminderTime = DefaultReminderTime
	}
	if s.Timezone == "" {
		s.Timezone = HostTimezone()
	}
	return s
}

// Validate checks every field before the settings are sent.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.DisplayName) == "" {
		return &ValidationError{Field: "display_name", Reason: "must not be empty"}
	}
	if _, err := time.Parse(reminderLayout, s.ReminderTime); err != nil || len(s.ReminderTime) != len(reminderLayout) {
		return &ValidationError{Field: "reminder_time", Reason: "must be HH:MM"}
	}
	if !s.Theme.Valid() {
		return &ValidationError{Field: "theme", Reason: "must be one of warm, citrus, sunset"}
	}
	if s.Timezone == "" {
		return &ValidationError{Field: "timezone", Reason: "must not be empty"}
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return &ValidationError{Field: "timezone", Reason: "unknown zone " + s.Timezone}
	}
	return nil
}

// Location resolves Timezone, falling back to the host zone.
func (s Settings) Location() *time.Location {
	if loc, err := time.LoadLocation(s.Timezone); err == nil && s.Timezone != "" {
		return loc
	}
	return time.Local
}

// HostTimezone names the IANA zone of the host environment.
func HostTimezone() string {
	if name := time.Now().Location().String(); name != "Local" && name != "" {
		return name
	}
	if tz := strings.TrimPrefix(os.Getenv("TZ"), ":"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}
	if target, err := filepath.EvalSymlinks("/etc/localtime"); err == nil {
		if i := strings.Index(target, "zoneinfo/"); i >= 0 {
			return target[i+len("zoneinfo/"):]
		}
	}
	return "UTC"
}
