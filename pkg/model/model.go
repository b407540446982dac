// Package model holds the journal API resources shared by the client, the
// flows and the user interfaces.
package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MinMood and MaxMood bound the self-reported mood score.
	MinMood = 1
	MaxMood = 10

	// MaxTextLength mirrors the server's limit on entry text.
	MaxTextLength = 5000
)

// User is the identity returned by login. It is read-only for the
// lifetime of a session.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

func (u *User) String() string {
	if u == nil {
		return ""
	}
	if u.IsAdmin {
		return u.Username + " (admin)"
	}
	return u.Username
}

// JournalEntry is a single free-text entry tagged with a mood score.
type JournalEntry struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Mood     int       `json:"mood"`
	Datetime Timestamp `json:"entry_datetime"`
}

// NewEntry is the body sent when creating an entry.
type NewEntry struct {
	Text string `json:"text"`
	Mood int    `json:"mood"`
}

// Validate checks the entry before it is sent to the server.
func (n NewEntry) Validate() error {
	if strings.TrimSpace(n.Text) == "" {
		return &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(n.Text) > MaxTextLength {
		return &ValidationError{Field: "text", Reason: fmt.Sprintf("must be at most %d characters", MaxTextLength)}
	}
	return ValidateMood(n.Mood)
}

// ValidateMood reports whether mood is within MinMood..MaxMood.
func ValidateMood(mood int) error {
	if mood < MinMood || mood > MaxMood {
		return &ValidationError{Field: "mood", Reason: fmt.Sprintf("must be between %d and %d, got %d", MinMood, MaxMood, mood)}
	}
	return nil
}

// MoodDay is the server computed aggregate for one calendar date.
type MoodDay struct {
	Date    string  `json:"date"`
	Average float64 `json:"average_mood"`
	Entries int     `json:"entries"`
}
