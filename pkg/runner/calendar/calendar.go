// Package calendar runs the calendar command.
package calendar

import (
	"context"
	"strings"
	"time"

	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/model"
	"tableflip.dev/moodlog/pkg/printers"
)

const monthLayout = "2006-01"

// Calendar prints mood per day. A zero Month prints every month with data.
type Calendar struct {
	Service *app.Service
	Printer *printers.PrettyPrint
	Month   time.Time
	JSON    bool
}

func (c *Calendar) Do(ctx context.Context) error {
	pp := c.Printer
	if pp == nil {
		pp = printers.New(nil)
	}
	if err := c.Service.LoadCalendar(ctx); err != nil {
		return app.Friendly(err)
	}
	days := c.Service.Calendar()
	if !c.Month.IsZero() {
		prefix := c.Month.Format(monthLayout) + "-"
		filtered := make([]model.MoodDay, 0, len(days))
		for _, d := range days {
			if strings.HasPrefix(d.Date, prefix) {
				filtered = append(filtered, d)
			}
		}
		days = filtered
	}
	if c.JSON {
		if days == nil {
			days = []model.MoodDay{}
		}
		return pp.JSON(map[string]any{"days": days})
	}
	pp.Calendar(c.Month, days)
	return nil
}

// ParseMonth reads a YYYY-MM flag value. Empty means every month.
func ParseMonth(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(monthLayout, v)
	if err != nil {
		return time.Time{}, &model.ValidationError{Field: "month", Reason: "must be YYYY-MM"}
	}
	return t, nil
}
