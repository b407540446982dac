package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/model"
)

const width = len("11 12 13 14 15 16 17") // an example week

// Calendar prints one month grid per month present in days, newest first.
// A zero month prints every month; otherwise only that one.
func (pp *PrettyPrint) Calendar(month time.Time, days []model.MoodDay) {
	months := app.Months(days)
	if !month.IsZero() {
		months = []time.Time{time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)}
	}
	pp.TitleWithCount("Mood Calendar", len(days))
	if len(months) == 0 {
		_, _ = pp.c(color.Faint, color.Italic).Fprint(pp.Out, " none\n\n")
		return
	}
	for _, m := range months {
		pp.PrintMonth(m, days)
	}
	pp.Legend()
}

// PrintMonth prints a week-per-line grid of then's month, each day
// colored by its average mood.
func (pp *PrettyPrint) PrintMonth(then time.Time, days []model.MoodDay) {
	byDay := app.MonthGrid(days, then)

	tf := pp.c(color.FgWhite, color.Italic)
	m := fmt.Sprintf("%s %d", then.Month(), then.Year())
	mid := (width - len(m)) / 2
	if mid < 0 {
		mid = 0
	}
	_, _ = tf.Fprintf(pp.Out, "%s%s\n", strings.Repeat(" ", mid), m)
	_, _ = pp.c(color.Faint).Fprintln(pp.Out, "Su Mo Tu We Th Fr Sa")

	d := StartDay(then)

	// Pad out the start of the month.
	_, _ = fmt.Fprint(pp.Out, strings.Repeat("   ", int(d)))

	for i := 1; i <= DaysIn(then); i++ {
		if md, ok := byDay[i]; ok {
			_, _ = pp.MoodColor(md.Average).Fprintf(pp.Out, "%2d ", i)
		} else {
			_, _ = pp.c(color.Faint).Fprintf(pp.Out, "%2d ", i)
		}

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(pp.Out, "\n")
		}
	}
	_, _ = fmt.Fprint(pp.Out, "\n\n")
}

// Legend explains the mood colors.
func (pp *PrettyPrint) Legend() {
	_, _ = pp.MoodColor(2).Fprint(pp.Out, "low ")
	_, _ = pp.MoodColor(5).Fprint(pp.Out, "meh ")
	_, _ = pp.MoodColor(7).Fprint(pp.Out, "good ")
	_, _ = pp.MoodColor(9).Fprint(pp.Out, "great")
	_, _ = fmt.Fprint(pp.Out, "\n\n")
}

// Days prints the per-day aggregates as a list.
func (pp *PrettyPrint) Days(days []model.MoodDay) {
	for _, d := range days {
		_, _ = pp.MoodColor(d.Average).Fprintf(pp.Out, "%s  %4.1f", d.Date, d.Average)
		_, _ = pp.c(color.Faint).Fprintf(pp.Out, "  (%d)\n", d.Entries)
	}
}

func NextMonth(then time.Time) time.Time {
	return time.Date(then.Year(), then.Month()+1, 1, 0, 0, 0, 0, then.Location())
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 1, 0, 0, 0, time.UTC).Weekday()
}
