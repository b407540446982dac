package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

var (
	output = &base.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "moodlog",
		Short: base.Wrap80("Mood journaling on the command line."),
		Long: base.Wrap80("Write journal entries tagged with a mood score, browse " +
			"your history and mood calendar, and tune your settings. Run " +
			"`moodlog ui` for the interactive shell."),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addLogin(topLevel)
	addLogout(topLevel)
	addWhoAmI(topLevel)
	addWrite(topLevel)
	addHistory(topLevel)
	addCalendar(topLevel)
	addSettings(topLevel)
	addUI(topLevel)
	addInfo(topLevel)
	addMCP(topLevel)
	addDevServer(topLevel)
	addVersion(topLevel)
	addUpgrade(topLevel)
	addCompletions(topLevel)
}
