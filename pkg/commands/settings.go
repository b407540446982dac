package commands

import (
	"errors"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/moodlog/pkg/commands/options"
	"tableflip.dev/moodlog/pkg/model"
	"tableflip.dev/moodlog/pkg/runner/settings"
)

func addSettings(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change display settings",
		Example: `
moodlog settings get
moodlog settings set --theme citrus --reminder 21:30
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addSettingsGet(cmd)
	addSettingsSet(cmd)

	topLevel.AddCommand(cmd)
}

func addSettingsGet(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			g := settings.Get{Service: e.Service, Printer: e.Printer, JSON: output.JSON}
			err = g.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addSettingsSet(topLevel *cobra.Command) {
	so := &options.SettingsOptions{}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Long: base.Wrap80("Only the given fields change. The whole settings " +
			"object is sent to the server, which replaces what it had."),
		Args: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			so.Resolve(cmd)
			if so.Empty() {
				return errors.New("nothing to change, pass at least one flag")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			s := settings.Set{
				Service:      e.Service,
				Printer:      e.Printer,
				DisplayName:  so.DisplayName,
				ReminderTime: so.ReminderTime,
				Theme:        so.Theme,
				Timezone:     so.Timezone,
				JSON:         output.JSON,
			}
			err = s.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	options.AddSettingsArgs(cmd, so)
	_ = cmd.RegisterFlagCompletionFunc("theme", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return themeCompletions(), cobra.ShellCompDirectiveNoFileComp
	})

	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func themeCompletions() []string {
	themes := model.Themes()
	out := make([]string, 0, len(themes))
	for _, t := range themes {
		out = append(out, string(t))
	}
	return out
}
