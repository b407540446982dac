package commands

import (
	"errors"
	"strings"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/moodlog/pkg/commands/options"
	"tableflip.dev/moodlog/pkg/runner/journal"
)

func addWrite(topLevel *cobra.Command) {
	eo := &options.EntryOptions{}

	cmd := &cobra.Command{
		Use:     "write <text...>",
		Aliases: []string{"w"},
		Short:   "Write a journal entry",
		Example: `
moodlog write had a calm morning --mood 7
moodlog write -m 3 "long day"
`,
		Args: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) < 1 {
				return errors.New("requires entry text")
			}
			eo.Message = strings.Join(args, " ")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			w := journal.Write{
				Service: e.Service,
				Printer: e.Printer,
				Text:    eo.Message,
				Mood:    eo.Mood,
				JSON:    output.JSON,
			}
			err = w.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	options.AddEntryArgs(cmd, eo)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addHistory(topLevel *cobra.Command) {
	ho := &options.HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journal entries, newest first",
		Example: `
moodlog history
moodlog history -n 5 --json
moodlog history --since 1w
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if ho.Limit < 0 {
				return output.HandleError(errors.New("--limit must not be negative"))
			}
			since, err := ho.GetSince()
			if err != nil {
				return output.HandleError(err)
			}
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			h := journal.History{
				Service: e.Service,
				Printer: e.Printer,
				Limit:   ho.Limit,
				Since:   since,
				JSON:    output.JSON,
			}
			err = h.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	options.AddHistoryArgs(cmd, ho)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
