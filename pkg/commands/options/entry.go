package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/moodlog/pkg/model"
	"tableflip.dev/moodlog/pkg/timeutil"
)

// EntryOptions
type EntryOptions struct {
	Message string
	Mood    int
}

func AddEntryArgs(cmd *cobra.Command, o *EntryOptions) {
	cmd.Flags().IntVarP(&o.Mood, "mood", "m", 0,
		"Mood score from 1 (low) to 10 (high).")
	_ = cmd.MarkFlagRequired("mood")
}

// HistoryOptions
type HistoryOptions struct {
	Limit       int
	SinceString string
}

func AddHistoryArgs(cmd *cobra.Command, o *HistoryOptions) {
	cmd.Flags().IntVarP(&o.Limit, "limit", "n", 0,
		"Show at most this many entries, newest first. 0 shows all.")
	cmd.Flags().StringVar(&o.SinceString, "since", "",
		`Only show entries written within a window, example: --since=1w2d.`)
}

// GetSince returns zero when no window was given.
func (o *HistoryOptions) GetSince() (time.Duration, error) {
	if o.SinceString == "" {
		return 0, nil
	}
	d, err := timeutil.ParseWindow(o.SinceString)
	if err != nil {
		return 0, &model.ValidationError{Field: "since", Reason: err.Error()}
	}
	return d, nil
}
