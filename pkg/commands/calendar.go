package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/moodlog/pkg/commands/options"
	"tableflip.dev/moodlog/pkg/runner/calendar"
)

func addCalendar(topLevel *cobra.Command) {
	mo := &options.MonthOptions{}

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Show the average mood per day",
		Example: `
moodlog calendar
moodlog calendar --month 2025-03
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			month, err := mo.GetMonth()
			if err != nil {
				return output.HandleError(err)
			}
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			c := calendar.Calendar{
				Service: e.Service,
				Printer: e.Printer,
				Month:   month,
				JSON:    output.JSON,
			}
			err = c.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	options.AddMonthArgs(cmd, mo)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
