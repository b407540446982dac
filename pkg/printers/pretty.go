package printers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-isatty"
	"github.com/microcosm-cc/bluemonday"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	"tableflip.dev/moodlog/pkg/model"
)

const (
	defaultWidth = 80
	timeLayout   = "Mon Jan 2 2006 15:04"
)

var (
	strict  = bluemonday.StrictPolicy()
	spacing = strings.Repeat(" ", len("10/10  "))
)

type PrettyPrint struct {
	Out     io.Writer
	Width   int
	NoColor bool
	// Location entry times are shown in; nil means local time.
	Location *time.Location
}

// New prints to w. Color is turned off when NO_COLOR is set or w is not a
// terminal.
func New(w io.Writer) *PrettyPrint {
	if w == nil {
		w = color.Output
	}
	pp := &PrettyPrint{Out: w, Width: defaultWidth}
	if termenv.EnvNoColor() {
		pp.NoColor = true
	} else if f, ok := w.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		pp.NoColor = true
	}
	return pp
}

func (pp *PrettyPrint) c(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if pp.NoColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c
}

func (pp *PrettyPrint) width() int {
	if pp.Width <= 0 {
		return defaultWidth
	}
	return pp.Width
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.Out, "")
}

func (pp *PrettyPrint) Title(title string) {
	_, _ = pp.c(color.Bold, color.Underline).Fprintln(pp.Out, title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	_, _ = pp.c(color.Bold, color.Underline).Fprint(pp.Out, title)
	c := pp.c(color.Faint)
	_, _ = c.Fprintf(pp.Out, " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.Out, " entry")
	default:
		_, _ = c.Fprintln(pp.Out, " entries")
	}
}

// History prints entries newest first with their mood and wrapped text.
func (pp *PrettyPrint) History(entries []model.JournalEntry) {
	pp.TitleWithCount("Journal History", len(entries))
	if len(entries) == 0 {
		_, _ = pp.c(color.Faint, color.Italic).Fprint(pp.Out, " none\n\n")
		return
	}

	loc := pp.Location
	if loc == nil {
		loc = time.Local
	}
	when := pp.c(color.Faint)
	text := pp.c()
	for _, e := range entries {
		_, _ = pp.MoodColor(float64(e.Mood)).Fprintf(pp.Out, "%-*s", len(spacing), fmt.Sprintf("%d/10", e.Mood))
		_, _ = when.Fprintln(pp.Out, e.Datetime.In(loc).Format(timeLayout))

		body := wordwrap.String(Sanitize(e.Text), pp.width()-len(spacing))
		for _, line := range strings.Split(body, "\n") {
			_, _ = text.Fprintf(pp.Out, "%s%s\n", spacing, line)
		}
		pp.NewLine()
	}
}

// Settings prints the settings as a two column table.
func (pp *PrettyPrint) Settings(s model.Settings) {
	bold := pp.c(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Setting"), bold.Sprint("Value"))
	tbl.AddRow("display name", Sanitize(s.DisplayName))
	tbl.AddRow("reminder", s.ReminderTime)
	tbl.AddRow("theme", string(s.Theme))
	tbl.AddRow("timezone", s.Timezone)
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(pp.Out, tbl)
}

// Status prints a one line flow message.
func (pp *PrettyPrint) Status(msg string) {
	if msg == "" {
		return
	}
	_, _ = pp.c(color.Italic).Fprintln(pp.Out, msg)
}

// JSON prints v indented.
func (pp *PrettyPrint) JSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(pp.Out, string(b))
	return err
}

// MoodColor picks a color for a mood score or daily average.
func (pp *PrettyPrint) MoodColor(mood float64) *color.Color {
	switch {
	case mood <= 0:
		return pp.c(color.Faint)
	case mood < 4:
		return pp.c(color.FgRed)
	case mood < 6:
		return pp.c(color.FgYellow)
	case mood < 8:
		return pp.c(color.FgGreen)
	default:
		return pp.c(color.FgHiGreen, color.Bold)
	}
}

// Sanitize strips markup from user text before it reaches the terminal.
func Sanitize(text string) string {
	return strings.TrimSpace(strict.Sanitize(text))
}
