package teaui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/model"
	"tableflip.dev/moodlog/pkg/runner/tea/internal/calendar"
)

var modeNames = map[mode]string{
	modeNormal:  "NORMAL",
	modeInsert:  "INSERT",
	modeCommand: "CMD",
	modeHelp:    "HELP",
}

// View renders the login screen or the active tab with the status line.
func (m Model) View() string {
	var body string
	if m.svc.CurrentView() == app.ViewLogin {
		body = m.viewLogin()
	} else {
		body = m.viewTabs() + "\n\n"
		switch m.svc.CurrentView() {
		case app.ViewNew:
			body += m.viewNew()
		case app.ViewHistory:
			body += m.viewHistory()
		case app.ViewCalendar:
			body += m.viewCalendar()
		case app.ViewSettings:
			body += m.viewSettings()
		}
	}

	switch m.mode {
	case modeCommand:
		body += "\n\n:" + m.command.View()
	case modeHelp:
		body += "\n\n" + lipgloss.NewStyle().Italic(true).Render(m.helpText())
	}
	return body + "\n\n" + m.viewStatus()
}

func (m Model) viewLogin() string {
	lines := []string{
		m.theme.Title.Render("moodlog"),
		"",
		m.theme.Label.Render("Username: ") + m.login.View(),
	}
	if m.loggingIn {
		lines = append(lines, "", m.theme.Footer.Busy.Render("Signing in..."))
	}
	if e := m.svc.LoginError(); e != "" {
		lines = append(lines, "", m.theme.Error.Render(e))
	}
	lines = append(lines, "", m.theme.Footer.Help.Render("enter sign in · ctrl+g google · esc quit"))
	return strings.Join(lines, "\n")
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, v := range app.Views() {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.svc.CurrentView() {
			tabs = append(tabs, m.theme.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.theme.Tab.Render(label))
		}
	}
	title := m.theme.Title.Render("moodlog")
	if u := m.svc.Session().User(); u != nil {
		title += m.theme.Label.Render(" · " + m.svc.Settings().DisplayName)
	}
	return title + "  " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewNew() string {
	var b strings.Builder
	b.WriteString(m.theme.Label.Render("Entry: "))
	b.WriteString(m.text.View())
	b.WriteString("\n\n")
	b.WriteString(m.theme.Label.Render("Mood:  "))
	b.WriteString(m.moodBar())
	b.WriteString("\n\n")
	help := "i write · +/- mood · s save"
	if m.capture != nil {
		if m.capture.Listening() {
			help += " · v stop listening"
		} else {
			help += " · v dictate"
		}
	}
	if m.saving {
		b.WriteString(m.theme.Footer.Busy.Render("Saving..."))
	} else {
		b.WriteString(m.theme.Footer.Help.Render(help))
	}
	return b.String()
}

func (m Model) moodBar() string {
	var cells []string
	for i := model.MinMood; i <= model.MaxMood; i++ {
		cell := "·"
		if i <= m.mood {
			cell = "■"
		}
		cells = append(cells, m.theme.Mood(float64(i)).Render(cell))
	}
	return strings.Join(cells, "") + fmt.Sprintf(" %d/%d", m.mood, model.MaxMood)
}

func (m Model) viewHistory() string {
	if len(m.history.Items()) == 0 {
		return m.theme.Label.Render("No entries yet. Write one on the New tab.")
	}
	return m.history.View()
}

func (m Model) viewCalendar() string {
	grid := app.MonthGrid(m.svc.Calendar(), m.month)
	today := m.now().In(m.svc.Settings().Location())
	days := make([]calendar.Day, 0, len(grid))
	for d, md := range grid {
		days = append(days, calendar.Day{Day: d, Mood: md.Average, Entries: md.Entries})
	}
	if today.Year() == m.month.Year() && today.Month() == m.month.Month() {
		days = append(days, calendar.Day{Day: today.Day(), IsToday: true})
		if md, ok := grid[today.Day()]; ok {
			days[len(days)-1].Mood = md.Average
			days[len(days)-1].Entries = md.Entries
		}
	}

	header := m.theme.Title.Render(m.month.Format("January 2006"))
	cal := calendar.Render(m.month, days, calendar.Options{
		HeaderStyle: m.theme.Label,
		EmptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		TodayStyle:  lipgloss.NewStyle().Underline(true),
		MoodStyle:   m.theme.Mood,
		ShowHeader:  true,
	})
	var legend []string
	for _, v := range []float64{1, 4, 7, 10} {
		legend = append(legend, m.theme.Mood(v).Render(fmt.Sprintf("■ %.0f", v)))
	}
	return header + "\n\n" + cal + "\n\n" + strings.Join(legend, "  ") +
		"\n\n" + m.theme.Footer.Help.Render("h/l month · t today · r refresh")
}

func (m Model) viewSettings() string {
	labels := [fieldCount]string{"Display name", "Reminder", "Theme", "Timezone"}
	var lines []string
	for f := field(0); f < fieldCount; f++ {
		value := m.form[f].View()
		if f == fieldTheme {
			value = string(m.formTheme)
		}
		label := fmt.Sprintf("%-13s", labels[f])
		if f == m.field {
			lines = append(lines, m.theme.Selected.Render("› "+label)+value)
		} else {
			lines = append(lines, "  "+m.theme.Label.Render(label)+value)
		}
	}
	if err := m.draft().Validate(); err != nil {
		lines = append(lines, "", m.theme.Error.Render(err.Error()))
	}
	help := "j/k move · enter edit · t theme · s save · u undo"
	if m.savingSettings {
		lines = append(lines, "", m.theme.Footer.Busy.Render("Saving settings..."))
	} else {
		lines = append(lines, "", m.theme.Footer.Help.Render(help))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewStatus() string {
	status := fmt.Sprintf("[%s] %s", modeNames[m.mode], m.status)
	if m.syncing {
		status += " (syncing)"
	}
	return m.theme.Footer.Status.Render(status)
}

func (m Model) helpText() string {
	return "Keys: tab/1-4 switch tabs, r refresh, : commands (q, logout, refresh), ? help, " +
		"new: i write, +/- mood, s save, v dictate; history: j/k; calendar: h/l; settings: j/k, enter edit, t theme, s save"
}
