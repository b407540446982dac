package theme

import (
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"

	"tableflip.dev/moodlog/pkg/model"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Name model.Theme

	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Label     lipgloss.Style
	Selected  lipgloss.Style
	Error     lipgloss.Style
	Footer    FooterTheme

	low, high colorful.Color
}

// FooterTheme groups styles used by the bottom status line.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Busy   lipgloss.Style
}

type palette struct {
	accent, low, high string
}

var palettes = map[model.Theme]palette{
	model.ThemeWarm:   {accent: "#E07A5F", low: "#6D597A", high: "#F2CC8F"},
	model.ThemeCitrus: {accent: "#F4A261", low: "#264653", high: "#E9C46A"},
	model.ThemeSunset: {accent: "#FF6B6B", low: "#355070", high: "#FFB56B"},
}

// For returns the styles of a settings theme. Unknown names fall back to
// the default theme.
func For(name model.Theme) Theme {
	p, ok := palettes[name]
	if !ok {
		name = model.DefaultTheme
		p = palettes[name]
	}
	accent := lipgloss.Color(p.accent)
	low, _ := colorful.Hex(p.low)
	high, _ := colorful.Hex(p.high)

	tab := lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	return Theme{
		Name:      name,
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		Tab:       tab,
		ActiveTab: tab.Bold(true).Foreground(accent).Underline(true),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Busy:   lipgloss.NewStyle().Italic(true).Foreground(accent),
		},
		low:  low,
		high: high,
	}
}

// MoodHex blends from the low to the high color of the theme. Scores are
// clamped to 1..10.
func (t Theme) MoodHex(mood float64) string {
	if mood < model.MinMood {
		mood = model.MinMood
	}
	if mood > model.MaxMood {
		mood = model.MaxMood
	}
	switch mood {
	case model.MinMood:
		return t.low.Hex()
	case model.MaxMood:
		return t.high.Hex()
	}
	pos := (mood - model.MinMood) / (model.MaxMood - model.MinMood)
	return t.low.BlendLab(t.high, pos).Clamped().Hex()
}

// Mood styles text with the color of a mood score.
func (t Theme) Mood(mood float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.MoodHex(mood)))
}
