package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/moodlog/pkg/runner/calendar"
)

// MonthOptions
type MonthOptions struct {
	MonthString string
}

func AddMonthArgs(cmd *cobra.Command, o *MonthOptions) {
	cmd.Flags().StringVar(&o.MonthString, "month", "",
		`Only show one month, example: --month="2025-03".`)
}

// GetMonth returns the zero time when no month was given.
func (o *MonthOptions) GetMonth() (time.Time, error) {
	if o.MonthString == "" {
		return time.Time{}, nil
	}
	return calendar.ParseMonth(o.MonthString)
}
